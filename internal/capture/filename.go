package capture

import (
	"fmt"
	"regexp"
	"strings"
)

// fallbackToken is used when the recipient has no email or when
// sanitization leaves nothing behind.
const fallbackToken = "invoice"

var tokenStrip = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Filename derives the output filename from the recipient email and the
// invoice number: {token}_invoice_{invoiceNumber}.pdf, where token is the
// email's local part reduced to [A-Za-z0-9_-]. Case is preserved.
func Filename(recipientEmail, invoiceNumber string) string {
	token := fallbackToken
	if recipientEmail != "" {
		local, _, _ := strings.Cut(recipientEmail, "@")
		local = tokenStrip.ReplaceAllString(local, "")
		if local != "" {
			token = local
		}
	}
	return fmt.Sprintf("%s_invoice_%s.pdf", token, invoiceNumber)
}
