package invoice

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("InvoiceData", func() {
	Describe("Subtotal", func() {
		var data InvoiceData

		When("the item list is empty", func() {
			BeforeEach(func() {
				data = InvoiceData{Items: []LineItem{}}
			})

			It("is zero", func() {
				Expect(data.Subtotal()).To(BeZero())
			})
		})

		When("items are present", func() {
			BeforeEach(func() {
				data = InvoiceData{Items: []LineItem{
					{ID: "1", Quantity: 1, Amount: 49.90},
					{ID: "2", Quantity: 5, Amount: 150.00},
				}}
			})

			It("sums quantity times unit price", func() {
				Expect(data.Subtotal()).To(BeNumerically("~", 799.90, 0.001))
			})

			It("equals the total", func() {
				Expect(data.Total()).To(Equal(data.Subtotal()))
			})
		})

		When("a quantity is fractional", func() {
			BeforeEach(func() {
				data = InvoiceData{Items: []LineItem{
					{ID: "1", Quantity: 2.5, Amount: 100},
				}}
			})

			It("is not rounded", func() {
				Expect(data.Subtotal()).To(BeNumerically("~", 250.0, 0.001))
			})
		})
	})

	Describe("Normalize", func() {
		var data InvoiceData

		When("logo alignment is unset", func() {
			BeforeEach(func() {
				data = InvoiceData{}
				data.Normalize()
			})

			It("defaults to right", func() {
				Expect(data.LogoAlignment).To(Equal(LogoRight))
			})
		})

		When("logo alignment is left", func() {
			BeforeEach(func() {
				data = InvoiceData{LogoAlignment: LogoLeft}
				data.Normalize()
			})

			It("is preserved", func() {
				Expect(data.LogoAlignment).To(Equal(LogoLeft))
			})
		})

		When("logo alignment is garbage", func() {
			BeforeEach(func() {
				data = InvoiceData{LogoAlignment: "center"}
				data.Normalize()
			})

			It("falls back to right", func() {
				Expect(data.LogoAlignment).To(Equal(LogoRight))
			})
		})
	})

	Describe("RandomInvoiceNumber", func() {
		It("matches the XXXXXXX-NNNN shape", func() {
			for i := 0; i < 20; i++ {
				Expect(RandomInvoiceNumber()).To(MatchRegexp(`^[A-Z0-9]{7}-[1-9][0-9]{3}$`))
			}
		})
	})

	Describe("DefaultInvoice", func() {
		var data InvoiceData

		BeforeEach(func() {
			data = DefaultInvoice(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
		})

		It("issues today and is due in fourteen days", func() {
			Expect(data.DateIssue).To(Equal("2024-01-15"))
			Expect(data.DateDue).To(Equal("2024-01-29"))
		})

		It("aligns the logo right", func() {
			Expect(data.LogoAlignment).To(Equal(LogoRight))
		})

		It("seeds two line items", func() {
			Expect(data.Items).To(HaveLen(2))
		})
	})
})
