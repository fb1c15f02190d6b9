package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(img image.Image) []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

func jpegBytes(img image.Image) []byte {
	var buf bytes.Buffer
	Expect(jpeg.Encode(&buf, img, nil)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("RenderPages", func() {
	var (
		data        []byte
		contentType string
		pages       [][]byte
		err         error
	)

	JustBeforeEach(func() {
		pages, err = RenderPages(data, contentType, DefaultDPI)
	})

	When("the document is a PNG", func() {
		BeforeEach(func() {
			data = pngBytes(solidImage(40, 30, color.White))
			contentType = "image/png"
		})

		It("should return a single PNG page of the same size", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))

			cfg, format, err := image.DecodeConfig(bytes.NewReader(pages[0]))
			Expect(err).NotTo(HaveOccurred())
			Expect(format).To(Equal("png"))
			Expect(cfg.Width).To(Equal(40))
			Expect(cfg.Height).To(Equal(30))
		})
	})

	When("the document is a JPEG with a generic content type", func() {
		BeforeEach(func() {
			data = jpegBytes(solidImage(20, 20, color.White))
			contentType = "application/octet-stream"
		})

		It("should sniff the type and render it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))
		})
	})

	When("the page is light text on a dark background", func() {
		BeforeEach(func() {
			data = pngBytes(solidImage(20, 20, color.Black))
			contentType = "image/png"
		})

		It("should invert the page", func() {
			Expect(err).NotTo(HaveOccurred())
			img, err := png.Decode(bytes.NewReader(pages[0]))
			Expect(err).NotTo(HaveOccurred())
			r, _, _, _ := img.At(10, 10).RGBA()
			Expect(r >> 8).To(BeNumerically(">", 200))
		})
	})

	When("the document is plain text", func() {
		BeforeEach(func() {
			data = []byte("just some words")
			contentType = "text/plain"
		})

		It("should return ErrUnsupportedFormat", func() {
			Expect(err).To(MatchError(ErrUnsupportedFormat))
			Expect(pages).To(BeNil())
		})
	})

	When("the document claims to be an image but is not", func() {
		BeforeEach(func() {
			data = []byte("not an image at all")
			contentType = "image/png"
		})

		It("should return ErrUnsupportedFormat", func() {
			Expect(err).To(MatchError(ErrUnsupportedFormat))
		})
	})

	When("the document is a corrupt PDF", func() {
		BeforeEach(func() {
			data = []byte("%PDF-1.4 garbage")
			contentType = "application/pdf"
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = DescribeTable("DetectContentType",
	func(data []byte, declared string, expected string) {
		Expect(DetectContentType(data, declared)).To(Equal(expected))
	},
	Entry("PDF magic wins over the declared type", []byte("%PDF-1.7\n"), "image/png", "application/pdf"),
	Entry("HEIC brand", append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...), "", "image/heic"),
	Entry("sniffed PNG", []byte("\x89PNG\x0D\x0A\x1A\x0A"), "application/octet-stream", "image/png"),
	Entry("declared type with parameters", []byte("hello"), "Image/WebP; charset=binary", "image/webp"),
	Entry("nothing declared", []byte("hello"), "", "application/octet-stream"),
)

var _ = Describe("Enhance", func() {
	It("should keep light pages dark-on-light", func() {
		out := Enhance(solidImage(10, 10, color.White))
		Expect(meanLuminance(out)).To(BeNumerically(">=", darkBackgroundLuminance))
	})

	It("should flip dark pages", func() {
		out := Enhance(solidImage(10, 10, color.Gray{Y: 30}))
		Expect(meanLuminance(out)).To(BeNumerically(">=", darkBackgroundLuminance))
	})
})
