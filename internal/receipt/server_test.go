package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/prometheus/client_golang/prometheus"
)

var _ = Describe("Server", func() {
	var (
		store       *mockStore
		registry    *prometheus.Registry
		service     *Service
		server      *Server
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		service = NewServiceWithDeps(newValidator(), store, NewMetrics(registry), &mockIDGenerator{id: "test-id"}, &mockTimeSource{})
		server = NewServerWithMux(service, registry, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.RouteToHandler("GET", "/metrics", server.ServeHTTP)
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	readBody := func(resp *http.Response) string {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return string(body)
	}

	BeforeEach(func() {
		store = newMockStore()
		registry = prometheus.NewRegistry()
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
			ghttpServer = nil
		}
	})

	Describe("handleProcessReceipt", func() {
		post := func(body string) *http.Response {
			resp, err := http.Post(ghttpServer.URL()+"/receipts/process", "application/json", strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		When("the receipt is valid", func() {
			It("should return status OK", func() {
				resp := post(targetReceipt)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return the new ID", func() {
				resp := post(targetReceipt)
				var got map[string]string
				Expect(json.Unmarshal([]byte(readBody(resp)), &got)).To(Succeed())
				Expect(got).To(Equal(map[string]string{"id": "test-id"}))
			})

			It("should set Content-Type to application/json", func() {
				resp := post(targetReceipt)
				defer resp.Body.Close()
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			})

			It("should set CORS headers", func() {
				resp := post(targetReceipt)
				defer resp.Body.Close()
				Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
			})

			It("should store the points", func() {
				post(targetReceipt).Body.Close()
				Expect(store.records).To(HaveKey("test-id"))
				Expect(store.records["test-id"].Points).To(Equal(28))
			})
		})

		When("the receipt is invalid", func() {
			It("should return status Bad Request", func() {
				resp := post(invalidDateReceipt)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})

			It("should return the fixed message", func() {
				resp := post(invalidDateReceipt)
				Expect(readBody(resp)).To(Equal(invalidReceiptMessage + "\n"))
			})
		})

		When("the body is not JSON", func() {
			It("should return the fixed message with status Bad Request", func() {
				resp := post("{")
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(readBody(resp)).To(ContainSubstring(invalidReceiptMessage))
			})
		})

		When("the store fails", func() {
			BeforeEach(func() {
				store.insertErr = errors.New("disk full")
			})

			It("should return status Internal Server Error", func() {
				resp := post(targetReceipt)
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(readBody(resp)).To(ContainSubstring(internalErrorMessage))
			})
		})

		When("the method is GET", func() {
			It("should return status Method Not Allowed", func() {
				resp, err := http.Get(ghttpServer.URL() + "/receipts/process")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
				resp.Body.Close()
			})
		})
	})

	Describe("handleGetPoints", func() {
		When("the receipt exists", func() {
			BeforeEach(func() {
				store.records["test-id"] = &Record{ID: "test-id", Points: 109}
			})

			It("should return status OK", func() {
				resp, err := http.Get(ghttpServer.URL() + "/receipts/test-id/points")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return the points", func() {
				resp, err := http.Get(ghttpServer.URL() + "/receipts/test-id/points")
				Expect(err).NotTo(HaveOccurred())
				var got map[string]int
				Expect(json.Unmarshal([]byte(readBody(resp)), &got)).To(Succeed())
				Expect(got).To(Equal(map[string]int{"points": 109}))
			})
		})

		When("the receipt does not exist", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/receipts/nonexistent/points")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				resp.Body.Close()
			})

			It("should return the fixed message", func() {
				resp, err := http.Get(ghttpServer.URL() + "/receipts/nonexistent/points")
				Expect(err).NotTo(HaveOccurred())
				Expect(readBody(resp)).To(Equal(notFoundMessage + "\n"))
			})
		})

		When("the store fails", func() {
			BeforeEach(func() {
				store.getErr = errors.New("database error")
			})

			It("should return status Internal Server Error", func() {
				resp, err := http.Get(ghttpServer.URL() + "/receipts/test-id/points")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				resp.Body.Close()
			})
		})
	})

	Describe("preflight requests", func() {
		It("should return status No Content with CORS headers", func() {
			req, err := http.NewRequest(http.MethodOptions, ghttpServer.URL()+"/receipts/process", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(ContainSubstring("POST"))
		})
	})

	Describe("metrics", func() {
		It("should expose receipt counters", func() {
			resp, err := http.Post(ghttpServer.URL()+"/receipts/process", "application/json", bytes.NewBufferString(targetReceipt))
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()

			resp, err = http.Get(ghttpServer.URL() + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(ContainSubstring(`receipt_processor_receipts_total{outcome="accepted"} 1`))
		})
	})

	Describe("without a gatherer", func() {
		It("should not serve metrics", func() {
			plain := NewServerWithMux(service, nil, http.NewServeMux())
			ghttpServer.Close()
			ghttpServer = ghttp.NewServer()
			ghttpServer.AppendHandlers(plain.ServeHTTP)

			resp, err := http.Get(ghttpServer.URL() + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})
})
