package livequery_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	livequery "github.com/perch-erp/livequery-go"
)

var _ = Describe("Schema", func() {
	var schema livequery.Schema

	BeforeEach(func() {
		schema = livequery.Schema{
			PrimaryKey: []string{"_id"},
			Indexes: [][]string{
				{"created_at"},
				{"updated_at"},
				{"status", "due_date"},
			},
			Sortable: []string{"total_amount"},
		}
	})

	Describe("SortableFields", func() {
		It("flattens the primary key, every index field and the allow-list", func() {
			fields := schema.SortableFields()

			Expect(fields).To(HaveKey("_id"))
			Expect(fields).To(HaveKey("created_at"))
			Expect(fields).To(HaveKey("updated_at"))
			Expect(fields).To(HaveKey("status"))
			Expect(fields).To(HaveKey("due_date"))
			Expect(fields).To(HaveKey("total_amount"))
			Expect(fields).To(HaveLen(6))
		})
	})

	Describe("Resolve", func() {
		It("returns the declared spelling for a camelCase alias", func() {
			Expect(schema.Resolve("createdAt")).To(Equal("created_at"))
			Expect(schema.Resolve("dueDate")).To(Equal("due_date"))
		})

		It("leaves declared and unknown fields unchanged", func() {
			Expect(schema.Resolve("status")).To(Equal("status"))
			Expect(schema.Resolve("name")).To(Equal("name"))
		})
	})

	Describe("ResolveSpec", func() {
		It("resolves every directive without mutating the input", func() {
			spec := livequery.SortSpec{
				{Field: "createdAt", Desc: true},
				{Field: "name"},
			}

			resolved := schema.ResolveSpec(spec)

			Expect(resolved).To(Equal(livequery.SortSpec{
				{Field: "created_at", Desc: true},
				{Field: "name"},
			}))
			Expect(spec[0].Field).To(Equal("createdAt"))
		})
	})

	Describe("SafeSortField", func() {
		It("returns an indexed field unchanged", func() {
			Expect(schema.SafeSortField("status")).To(Equal("status"))
			Expect(schema.SafeSortField("due_date")).To(Equal("due_date"))
			Expect(schema.SafeSortField("total_amount")).To(Equal("total_amount"))
		})

		It("matches camelCase requests against snake_case declarations", func() {
			Expect(schema.SafeSortField("dueDate")).To(Equal("due_date"))
			Expect(schema.SafeSortField("totalAmount")).To(Equal("total_amount"))
			Expect(schema.SafeSortField("createdAt")).To(Equal("created_at"))
		})

		It("falls back to created_at for unindexed fields", func() {
			Expect(schema.SafeSortField("name")).To(Equal("created_at"))
			Expect(schema.SafeSortField("anything")).To(Equal("created_at"))
		})

		It("falls back to updated_at when created_at is not indexed", func() {
			schema.Indexes = [][]string{{"updated_at"}}

			Expect(schema.SafeSortField("name")).To(Equal("updated_at"))
		})

		It("falls back to the first primary-key field as a last resort", func() {
			schema.Indexes = nil
			schema.Sortable = nil

			Expect(schema.SafeSortField("name")).To(Equal("_id"))
		})

		It("uses the first component of a compound primary key", func() {
			compound := livequery.Schema{PrimaryKey: []string{"tenant", "seq"}}

			Expect(compound.SafeSortField("name")).To(Equal("tenant"))
		})

		It("never returns the requested field when it is absent from the schema", func() {
			resolved := schema.SafeSortField("name")

			Expect(resolved).To(BeElementOf("created_at", "updated_at", "_id"))
		})

		It("resolves an empty schema to the default id field", func() {
			Expect(livequery.Schema{}.SafeSortField("name")).To(Equal(livequery.DefaultIDField))
		})

		It("resolves an empty request straight to the fallback chain", func() {
			Expect(schema.SafeSortField("")).To(Equal("created_at"))
		})
	})
})
