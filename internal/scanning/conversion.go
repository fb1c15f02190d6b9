package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// DefaultDPI is the resolution PDF pages are rendered at.
const DefaultDPI = 300

// ErrUnsupportedFormat is returned for documents that are neither a PDF nor
// a decodable image.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// darkBackgroundLuminance is the mean gray level below which a page is
// treated as light text on a dark background and inverted.
const darkBackgroundLuminance = 127

// RenderPages turns a document into one enhanced PNG per page, in page order.
func RenderPages(data []byte, contentType string, dpi float64) ([][]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	mimeType := DetectContentType(data, contentType)
	switch {
	case mimeType == "application/pdf":
		return renderPDF(data, dpi)
	case isHEICMimeType(mimeType):
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return encodePages(img)
	case strings.HasPrefix(mimeType, "image/"):
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
		return encodePages(img)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
}

// DetectContentType works out the document type from its leading bytes,
// falling back to the declared type when sniffing is inconclusive.
func DetectContentType(data []byte, declared string) string {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "application/pdf"
	}
	if isHEICFormat(data) {
		return "image/heic"
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}

	mimeType := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}

// renderPDF rasterizes every page of a PDF
func renderPDF(data []byte, dpi float64) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", ErrUnsupportedFormat)
	}

	pages := make([][]byte, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", n+1, err)
		}
		page, err := encodePNG(Enhance(img))
		if err != nil {
			return nil, fmt.Errorf("encoding PDF page %d: %w", n+1, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func encodePages(img image.Image) ([][]byte, error) {
	page, err := encodePNG(Enhance(img))
	if err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return [][]byte{page}, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Enhance prepares a page for OCR: grayscale, stronger contrast, a light
// sharpen, and dark pages inverted to dark-on-light.
func Enhance(img image.Image) *image.NRGBA {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 20)
	out = imaging.Sharpen(out, 1.0)
	if meanLuminance(out) < darkBackgroundLuminance {
		out = imaging.Invert(out)
	}
	return out
}

// meanLuminance averages the red channel, which equals the gray level of a
// grayscale image.
func meanLuminance(img *image.NRGBA) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 255
	}
	var sum uint64
	for y := 0; y < bounds.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+bounds.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			sum += uint64(row[x])
		}
	}
	return float64(sum) / float64(bounds.Dx()*bounds.Dy())
}

// isHEICFormat checks for an ftyp box with a HEIC/HEIF brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
