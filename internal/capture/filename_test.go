package capture

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Filename", func() {
	var (
		email         string
		invoiceNumber string
		filename      string
	)

	BeforeEach(func() {
		invoiceNumber = "A1-22"
	})

	JustBeforeEach(func() {
		filename = Filename(email, invoiceNumber)
	})

	When("the recipient email has punctuation in the local part", func() {
		BeforeEach(func() {
			email = "jane.doe@example.com"
		})

		It("strips the punctuation and preserves case", func() {
			Expect(filename).To(Equal("janedoe_invoice_A1-22.pdf"))
		})
	})

	When("the local part contains hyphens and underscores", func() {
		BeforeEach(func() {
			email = "jane_doe-billing@example.com"
		})

		It("keeps them", func() {
			Expect(filename).To(Equal("jane_doe-billing_invoice_A1-22.pdf"))
		})
	})

	When("the recipient email is empty", func() {
		BeforeEach(func() {
			email = ""
		})

		It("falls back to the literal invoice token", func() {
			Expect(filename).To(Equal("invoice_invoice_A1-22.pdf"))
		})
	})

	When("the local part is entirely punctuation", func() {
		BeforeEach(func() {
			email = "...@x.com"
		})

		It("falls back to the literal invoice token", func() {
			Expect(filename).To(Equal("invoice_invoice_A1-22.pdf"))
		})
	})

	When("the email has no @ separator", func() {
		BeforeEach(func() {
			email = "billing"
		})

		It("uses the whole string as the local part", func() {
			Expect(filename).To(Equal("billing_invoice_A1-22.pdf"))
		})
	})
})
