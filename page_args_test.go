package livequery_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	livequery "github.com/perch-erp/livequery-go"
)

var _ = Describe("TotalPages", func() {
	It("rounds up to whole pages", func() {
		Expect(livequery.TotalPages(25, 10)).To(Equal(3))
		Expect(livequery.TotalPages(30, 10)).To(Equal(3))
		Expect(livequery.TotalPages(31, 10)).To(Equal(4))
		Expect(livequery.TotalPages(1, 10)).To(Equal(1))
	})

	It("yields zero pages for an empty result", func() {
		Expect(livequery.TotalPages(0, 10)).To(Equal(0))
	})

	It("guards against non-positive page sizes", func() {
		Expect(livequery.TotalPages(10, 0)).To(Equal(0))
		Expect(livequery.TotalPages(10, -1)).To(Equal(0))
	})
})

var _ = Describe("ClampPage", func() {
	It("passes in-range pages through", func() {
		Expect(livequery.ClampPage(2, 5)).To(Equal(2))
		Expect(livequery.ClampPage(5, 5)).To(Equal(5))
	})

	It("clamps past-the-end pages to the last page", func() {
		Expect(livequery.ClampPage(9, 3)).To(Equal(3))
	})

	It("clamps to 1 when the result is empty", func() {
		Expect(livequery.ClampPage(4, 0)).To(Equal(1))
	})

	It("raises page numbers below 1", func() {
		Expect(livequery.ClampPage(0, 3)).To(Equal(1))
		Expect(livequery.ClampPage(-2, 3)).To(Equal(1))
	})
})

var _ = Describe("PageArgs", func() {
	It("normalizes the page number to at least 1", func() {
		Expect(livequery.PageArgs{Page: 0}.Normalize().Page).To(Equal(1))
		Expect(livequery.PageArgs{Page: 3}.Normalize().Page).To(Equal(3))
	})

	It("computes the record offset for a page", func() {
		Expect(livequery.PageArgs{Page: 1}.Offset(10)).To(Equal(0))
		Expect(livequery.PageArgs{Page: 3}.Offset(10)).To(Equal(20))
		Expect(livequery.PageArgs{Page: 0}.Offset(10)).To(Equal(0))
	})
})

var _ = Describe("PageConfig", func() {
	It("uses the default size when none is requested", func() {
		config := livequery.NewPageConfig()

		Expect(config.EffectiveSize(livequery.PageArgs{})).To(Equal(livequery.DefaultPageSize))
	})

	It("caps oversized requests instead of rejecting them", func() {
		config := livequery.NewPageConfig().WithMaxSize(100)

		Expect(config.EffectiveSize(livequery.PageArgs{Size: 5000})).To(Equal(100))
	})

	It("honors a custom default", func() {
		config := livequery.NewPageConfig().WithDefaultSize(25)

		Expect(config.EffectiveSize(livequery.PageArgs{})).To(Equal(25))
		Expect(config.EffectiveSize(livequery.PageArgs{Size: 10})).To(Equal(10))
	})
})
