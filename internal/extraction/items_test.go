package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BuildCandidate", func() {
	var (
		line Line
		item Item
		ok   bool
	)

	BeforeEach(func() {
		line = Line{BBox: BBox{Left: 12, Top: 300, Width: 400, Height: 22}}
	})

	JustBeforeEach(func() {
		item, ok = BuildCandidate(line)
	})

	When("the line ends with an amount", func() {
		BeforeEach(func() {
			line.Text = "Paneer Tikka 250.00"
		})

		It("builds a candidate", func() {
			Expect(ok).To(BeTrue())
		})

		It("strips the amount from the name", func() {
			Expect(item.Name).To(Equal("Paneer Tikka"))
		})

		It("parses the amount", func() {
			Expect(item.Amount).To(Equal(250.00))
		})

		It("leaves quantity and rate unset", func() {
			Expect(item.Quantity).To(BeNil())
			Expect(item.Rate).To(BeNil())
		})

		It("inherits the line box", func() {
			Expect(item.BBox).To(Equal(line.BBox))
		})
	})

	When("the line has a grouped amount", func() {
		BeforeEach(func() {
			line.Text = "Room Charges ₹1,250.00"
		})

		It("removes the whole grouped amount from the name", func() {
			Expect(item.Name).To(Equal("Room Charges"))
			Expect(item.Amount).To(Equal(1250.00))
		})
	})

	When("the line is only an amount", func() {
		BeforeEach(func() {
			line.Text = "  250.00 "
		})

		It("falls back to the line text as the name", func() {
			Expect(item.Name).To(Equal("250.00"))
		})
	})

	When("the line has a quantity and rate", func() {
		BeforeEach(func() {
			line.Text = "Syringe 3 x 12.50"
		})

		It("captures the quantity", func() {
			Expect(item.Quantity).NotTo(BeNil())
			Expect(*item.Quantity).To(Equal(3.0))
		})

		It("captures the rate", func() {
			Expect(item.Rate).NotTo(BeNil())
			Expect(*item.Rate).To(Equal(12.5))
		})
	})

	When("the line uses an asterisk separator", func() {
		BeforeEach(func() {
			line.Text = "Gauze 4*2.25"
		})

		It("captures the quantity and rate", func() {
			Expect(*item.Quantity).To(Equal(4.0))
			Expect(*item.Rate).To(Equal(2.25))
		})
	})

	When("the line has no amount", func() {
		BeforeEach(func() {
			line.Text = "Thank you for visiting"
		})

		It("builds nothing", func() {
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("BuildCandidates", func() {
	It("keeps priced lines in order and skips the rest", func() {
		items := BuildCandidates([]Line{
			{Text: "City Hospital"},
			{Text: "Consultation 500.00"},
			{Text: "Pharmacy"},
			{Text: "X-Ray 750.00"},
		})
		Expect(items).To(HaveLen(2))
		Expect(items[0].Name).To(Equal("Consultation"))
		Expect(items[1].Name).To(Equal("X-Ray"))
	})
})
