package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TokenSortRatio", func() {
	It("scores identical names 100", func() {
		Expect(TokenSortRatio("Paracetamol 500mg", "Paracetamol 500mg")).To(Equal(100))
	})

	It("ignores word order and case", func() {
		Expect(TokenSortRatio("Cola Coca", "coca COLA")).To(Equal(100))
	})

	It("treats punctuation and unit spacing alike", func() {
		Expect(TokenSortRatio("Coca Cola 1.5ltr", "Coca-Cola 1.5 Ltr")).To(Equal(100))
	})

	It("normalizes compatibility characters", func() {
		Expect(TokenSortRatio("Ｃｏｆｆｅｅ", "coffee")).To(Equal(100))
	})

	It("scores unrelated names low", func() {
		Expect(TokenSortRatio("Paneer Tikka", "Butter Naan")).To(BeNumerically("<", 60))
	})

	It("scores near misses high but below identical", func() {
		score := TokenSortRatio("Paracetamol Tablet", "Paracetamo1 Tablet")
		Expect(score).To(BeNumerically(">", 80))
		Expect(score).To(BeNumerically("<", 100))
	})

	It("scores an empty name 0", func() {
		Expect(TokenSortRatio("", "anything")).To(Equal(0))
		Expect(TokenSortRatio("--", "anything")).To(Equal(0))
	})

	It("is symmetric", func() {
		Expect(TokenSortRatio("Butter Naan", "Garlic Naan")).To(Equal(TokenSortRatio("Garlic Naan", "Butter Naan")))
	})
})
