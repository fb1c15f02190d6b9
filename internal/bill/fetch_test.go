package bill

import (
	"context"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("HTTPFetcher", func() {
	var (
		server      *ghttp.Server
		fetcher     *HTTPFetcher
		documentURL string
		data        []byte
		contentType string
		err         error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		fetcher = NewHTTPFetcher(time.Second, 16)
		documentURL = server.URL() + "/bill.pdf"
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		data, contentType, err = fetcher.Fetch(context.Background(), documentURL)
	})

	When("the document is served", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/bill.pdf"),
				ghttp.RespondWith(http.StatusOK, "%PDF-1.4", http.Header{"Content-Type": {"application/pdf"}}),
			))
		})

		It("should return the body and content type", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("%PDF-1.4")))
			Expect(contentType).To(Equal("application/pdf"))
		})
	})

	When("the server returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusNotFound, "gone"))
		})

		It("should return an error", func() {
			Expect(err).To(MatchError(ContainSubstring("unexpected status 404")))
		})
	})

	When("the document exceeds the size cap", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, strings.Repeat("x", 17)))
		})

		It("should return an error", func() {
			Expect(err).To(MatchError(ContainSubstring("exceeds 16 bytes")))
		})
	})

	When("the document is exactly the size cap", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, strings.Repeat("x", 16)))
		})

		It("should return it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(HaveLen(16))
		})
	})

	When("the server is too slow", func() {
		BeforeEach(func() {
			fetcher = NewHTTPFetcher(50*time.Millisecond, 16)
			server.AppendHandlers(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			})
		})

		It("should time out", func() {
			Expect(err).To(MatchError(ContainSubstring("downloading document")))
		})
	})

	When("the URL is not http", func() {
		BeforeEach(func() {
			documentURL = "file:///etc/passwd"
		})

		It("should refuse it", func() {
			Expect(err).To(MatchError(ContainSubstring(`unsupported url scheme "file"`)))
		})
	})

	When("the URL cannot be parsed", func() {
		BeforeEach(func() {
			documentURL = "http://[::1"
		})

		It("should return an error", func() {
			Expect(err).To(MatchError(ContainSubstring("parsing url")))
		})
	})
})

var _ = Describe("NewHTTPFetcher", func() {
	It("should fall back to the defaults", func() {
		fetcher := NewHTTPFetcher(0, 0)
		Expect(fetcher.client.Timeout).To(Equal(DefaultFetchTimeout))
		Expect(fetcher.maxSize).To(Equal(int64(DefaultMaxDocumentSize)))
	})
})
