package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AssembleLines", func() {
	var (
		tokens []Token
		lines  []Line
	)

	JustBeforeEach(func() {
		lines = AssembleLines(tokens)
	})

	When("there are no tokens", func() {
		BeforeEach(func() {
			tokens = nil
		})

		It("returns no lines", func() {
			Expect(lines).To(BeEmpty())
		})
	})

	When("tokens are a few pixels apart vertically", func() {
		BeforeEach(func() {
			tokens = []Token{
				tok("Coffee", 10, 100, 60),
				tok("45.00", 200, 104, 50),
				tok("Tea", 10, 200, 30),
			}
		})

		It("merges the close tokens and starts a new line for the far one", func() {
			Expect(lines).To(HaveLen(2))
			Expect(lines[0].Text).To(Equal("Coffee 45.00"))
			Expect(lines[1].Text).To(Equal("Tea"))
		})

		It("unions the member boxes", func() {
			Expect(lines[0].BBox).To(Equal(BBox{Left: 10, Top: 100, Width: 240, Height: 24}))
			Expect(lines[1].BBox).To(Equal(BBox{Left: 10, Top: 200, Width: 30, Height: 20}))
		})
	})

	When("tokens arrive out of reading order", func() {
		BeforeEach(func() {
			tokens = []Token{
				tok("Tea", 10, 200, 30),
				tok("45.00", 200, 104, 50),
				tok("Coffee", 10, 100, 60),
			}
		})

		It("orders lines top to bottom", func() {
			Expect(lines).To(HaveLen(2))
			Expect(lines[0].Text).To(Equal("Coffee 45.00"))
			Expect(lines[1].Text).To(Equal("Tea"))
		})
	})

	When("a token to the left sits slightly lower", func() {
		BeforeEach(func() {
			tokens = []Token{
				tok("9.00", 300, 100, 40),
				tok("Item", 10, 105, 40),
			}
		})

		It("joins the text left to right", func() {
			Expect(lines).To(HaveLen(1))
			Expect(lines[0].Text).To(Equal("Item 9.00"))
		})
	})

	When("the open line is tall", func() {
		BeforeEach(func() {
			tokens = []Token{
				{Text: "Header", BBox: BBox{Left: 10, Top: 100, Width: 80, Height: 40}},
				tok("Right", 200, 115, 40),
			}
		})

		It("tolerates half the line height", func() {
			Expect(lines).To(HaveLen(1))
		})
	})

	When("the open line is short", func() {
		BeforeEach(func() {
			tokens = []Token{
				tok("Left", 10, 100, 40),
				tok("Below", 200, 115, 40),
			}
		})

		It("uses the minimum tolerance", func() {
			Expect(lines).To(HaveLen(2))
		})
	})

	When("the open line grows as tokens join", func() {
		BeforeEach(func() {
			tokens = []Token{
				tok("A", 10, 100, 10),
				{Text: "B", BBox: BBox{Left: 30, Top: 105, Width: 10, Height: 40}},
				tok("C", 50, 118, 10),
			}
		})

		It("measures tolerance against the grown box", func() {
			Expect(lines).To(HaveLen(1))
			Expect(lines[0].Text).To(Equal("A B C"))
		})
	})
})

var _ = Describe("CleanTokens", func() {
	It("should trim text, drop blanks and clamp negative sizes", func() {
		cleaned := CleanTokens([]Token{
			{Text: "  Rice ", BBox: BBox{Left: 1, Top: 2, Width: -5, Height: 10}, Confidence: 80},
			{Text: "   ", BBox: BBox{Width: 10, Height: 10}},
			{Text: "", BBox: BBox{Width: 10, Height: 10}},
			{Text: "40.00", BBox: BBox{Left: 50, Top: 2, Width: 30, Height: -1}, Confidence: UnknownConfidence},
		})

		Expect(cleaned).To(Equal([]Token{
			{Text: "Rice", BBox: BBox{Left: 1, Top: 2, Width: 0, Height: 10}, Confidence: 80},
			{Text: "40.00", BBox: BBox{Left: 50, Top: 2, Width: 30, Height: 0}, Confidence: UnknownConfidence},
		}))
	})

	It("should return an empty slice for no tokens", func() {
		Expect(CleanTokens(nil)).To(BeEmpty())
	})
})
