package livequery_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	livequery "github.com/perch-erp/livequery-go"
)

var _ = Describe("Toggle", func() {
	Describe("simple clicks", func() {
		It("starts an untouched column descending, then flips it ascending", func() {
			spec, changed := livequery.Toggle(nil, "amount", false)
			Expect(changed).To(BeTrue())
			Expect(spec).To(Equal(livequery.SortSpec{{Field: "amount", Desc: true}}))

			spec, changed = livequery.Toggle(spec, "amount", false)
			Expect(changed).To(BeTrue())
			Expect(spec).To(Equal(livequery.SortSpec{{Field: "amount", Desc: false}}))
		})

		It("replaces a multi-column spec with a single descending entry", func() {
			spec := livequery.SortSpec{
				{Field: "status", Desc: true},
				{Field: "amount", Desc: false},
			}

			next, changed := livequery.Toggle(spec, "customer", false)

			Expect(changed).To(BeTrue())
			Expect(next).To(Equal(livequery.SortSpec{{Field: "customer", Desc: true}}))
		})

		It("replaces rather than flips when the clicked column is first but not alone", func() {
			spec := livequery.SortSpec{
				{Field: "status", Desc: false},
				{Field: "amount", Desc: true},
			}

			next, changed := livequery.Toggle(spec, "status", false)

			Expect(changed).To(BeTrue())
			Expect(next).To(Equal(livequery.SortSpec{{Field: "status", Desc: true}}))
		})

		It("ignores an empty field name", func() {
			spec := livequery.SortSpec{{Field: "status", Desc: true}}

			next, changed := livequery.Toggle(spec, "", false)

			Expect(changed).To(BeFalse())
			Expect(next).To(Equal(spec))
		})
	})

	Describe("multi-sort clicks", func() {
		It("appends new columns descending, preserving precedence order", func() {
			spec, _ := livequery.Toggle(nil, "status", true)
			spec, _ = livequery.Toggle(spec, "amount", true)

			Expect(spec).To(Equal(livequery.SortSpec{
				{Field: "status", Desc: true},
				{Field: "amount", Desc: true},
			}))
		})

		It("flips an existing column in place without reordering", func() {
			spec := livequery.SortSpec{
				{Field: "status", Desc: true},
				{Field: "amount", Desc: true},
				{Field: "customer", Desc: true},
			}

			next, changed := livequery.Toggle(spec, "amount", true)

			Expect(changed).To(BeTrue())
			Expect(next).To(Equal(livequery.SortSpec{
				{Field: "status", Desc: true},
				{Field: "amount", Desc: false},
				{Field: "customer", Desc: true},
			}))
		})

		It("silently ignores a fourth distinct column", func() {
			var spec livequery.SortSpec
			for _, field := range []string{"a", "b", "c", "d"} {
				spec, _ = livequery.Toggle(spec, field, true)
			}

			Expect(spec).To(HaveLen(livequery.MaxSortFields))
			Expect(spec.Contains("d")).To(BeFalse())

			_, changed := livequery.Toggle(spec, "d", true)
			Expect(changed).To(BeFalse())
		})
	})

	It("never mutates its input", func() {
		spec := livequery.SortSpec{{Field: "status", Desc: true}}

		livequery.Toggle(spec, "status", true)
		livequery.Toggle(spec, "amount", false)

		Expect(spec).To(Equal(livequery.SortSpec{{Field: "status", Desc: true}}))
	})
})

var _ = Describe("SortSpec", func() {
	It("finds fields by position", func() {
		spec := livequery.SortSpec{
			{Field: "status", Desc: true},
			{Field: "amount", Desc: false},
		}

		Expect(spec.IndexOf("amount")).To(Equal(1))
		Expect(spec.IndexOf("missing")).To(Equal(-1))
		Expect(spec.Contains("status")).To(BeTrue())
	})

	It("exposes the primary directive", func() {
		_, ok := livequery.SortSpec{}.Primary()
		Expect(ok).To(BeFalse())

		primary, ok := livequery.SortSpec{{Field: "amount", Desc: true}}.Primary()
		Expect(ok).To(BeTrue())
		Expect(primary.Field).To(Equal("amount"))
	})
})
