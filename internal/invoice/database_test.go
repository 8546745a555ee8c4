package invoice

import (
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveExport", func() {
		var (
			record *ExportRecord
			err    error
		)

		BeforeEach(func() {
			record = &ExportRecord{
				ID:            "test-id",
				Filename:      "janedoe_invoice_A1-22.pdf",
				InvoiceNumber: "A1-22",
				SizeBytes:     12345,
				PageHeightMM:  297.5,
				StoragePath:   "test-id_janedoe_invoice_A1-22.pdf",
				CreatedAt:     time.Now(),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveExport(record)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the record to the database", func() {
				saved, getErr := db.GetExport("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ID).To(Equal("test-id"))
			})
		})
	})

	Describe("GetExport", func() {
		var (
			exportID string
			record   *ExportRecord
			err      error
		)

		JustBeforeEach(func() {
			record, err = db.GetExport(exportID)
		})

		When("export exists", func() {
			BeforeEach(func() {
				exportID = "test-id"
				testRecord := &ExportRecord{
					ID:            "test-id",
					Filename:      "janedoe_invoice_A1-22.pdf",
					InvoiceNumber: "A1-22",
					SizeBytes:     12345,
					PageHeightMM:  297.5,
					StoragePath:   "test-id_janedoe_invoice_A1-22.pdf",
					CreatedAt:     time.Now(),
				}
				Expect(db.SaveExport(testRecord)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the correct export ID", func() {
				Expect(record.ID).To(Equal("test-id"))
			})

			It("should return the correct filename", func() {
				Expect(record.Filename).To(Equal("janedoe_invoice_A1-22.pdf"))
			})

			It("should return the correct page height", func() {
				Expect(record.PageHeightMM).To(Equal(297.5))
			})
		})

		When("export does not exist", func() {
			var expectedErr error

			BeforeEach(func() {
				exportID = "nonexistent"
				expectedErr = errors.New("export not found: nonexistent")
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(expectedErr))
			})
		})
	})

	Describe("ListExports", func() {
		var (
			records []*ExportRecord
			err     error
		)

		JustBeforeEach(func() {
			records, err = db.ListExports()
		})

		When("exports exist", func() {
			BeforeEach(func() {
				older := &ExportRecord{
					ID:        "id1",
					Filename:  "first.pdf",
					CreatedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				}
				newer := &ExportRecord{
					ID:        "id2",
					Filename:  "second.pdf",
					CreatedAt: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
				}
				Expect(db.SaveExport(older)).NotTo(HaveOccurred())
				Expect(db.SaveExport(newer)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return all exports", func() {
				Expect(records).To(HaveLen(2))
			})

			It("should return newest first", func() {
				Expect(records[0].ID).To(Equal("id2"))
				Expect(records[1].ID).To(Equal("id1"))
			})
		})

		When("no exports exist", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an empty list", func() {
				Expect(records).To(BeEmpty())
			})
		})
	})

	Describe("DeleteExport", func() {
		var (
			exportID string
			err      error
		)

		JustBeforeEach(func() {
			err = db.DeleteExport(exportID)
		})

		When("export exists", func() {
			BeforeEach(func() {
				exportID = "test-id"
				record := &ExportRecord{
					ID:        "test-id",
					Filename:  "test.pdf",
					CreatedAt: time.Now(),
				}
				Expect(db.SaveExport(record)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should remove the record from the database", func() {
				_, getErr := db.GetExport("test-id")
				Expect(getErr).To(HaveOccurred())
			})
		})

		When("export does not exist", func() {
			BeforeEach(func() {
				exportID = "nonexistent"
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})

	Describe("Close", func() {
		It("should not return an error", func() {
			err := db.Close()
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
