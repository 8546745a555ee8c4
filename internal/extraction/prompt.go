package extraction

import "fmt"

// extractPromptFormat is the shared prompt used by all LLM providers for
// extracting billing information from pasted text.
const extractPromptFormat = `You are an expert data extraction assistant.
Analyze the following unstructured text (which might be an email signature, a request for invoice, or a raw address block).
Extract the billing information for the "Bill To" section of an invoice.

Input Text:
"%s"

Return ONLY valid JSON in this exact format:
{
  "companyName": "Full name of the person or company",
  "addressLine1": "Street address or first part of the address",
  "addressLine2": "City, State, Zip, Country combined into a single string",
  "email": "Email address for billing",
  "vatNumber": "VAT number or tax ID if present"
}

Important:
- Ensure address extraction is logical. If parts of the address are missing, format what is available.
- If a field is completely missing, use an empty string.
- Do not include any text before or after the JSON.
- Do not use markdown code blocks.`

func extractPrompt(text string) string {
	return fmt.Sprintf(extractPromptFormat, text)
}
