package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type sampleStats struct {
	Hits   uint64
	Misses uint64
}

type sampleSource struct {
	stats sampleStats
}

func (s *sampleSource) Snapshot() any {
	stats := s.stats
	return &stats
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		m.Router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should ignore privileged port numbers", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Trace", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)
		bar.IncrementFinished(1)

		rec := get("/api/progress")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var statuses []ProgressBarStatus
		Expect(json.Unmarshal(rec.Body.Bytes(), &statuses)).To(Succeed())
		Expect(statuses).To(HaveLen(1))
		Expect(statuses[0].Name).To(Equal("Trace"))
		Expect(statuses[0].Total).To(Equal(uint64(10)))
		Expect(statuses[0].Finished).To(Equal(uint64(3)))
		Expect(statuses[0].InProgress).To(Equal(uint64(1)))
		Expect(statuses[0].ID).NotTo(BeEmpty())
	})

	It("should remove completed progress bars", func() {
		bar1 := m.CreateProgressBar("A", 1)
		m.CreateProgressBar("B", 1)

		m.CompleteProgressBar(bar1)

		var statuses []ProgressBarStatus
		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &statuses)).
			To(Succeed())
		Expect(statuses).To(HaveLen(1))
		Expect(statuses[0].Name).To(Equal("B"))
	})

	It("should list stats sources", func() {
		m.RegisterStats("cache", &sampleSource{})

		var names []string
		Expect(json.Unmarshal(get("/api/stats").Body.Bytes(), &names)).
			To(Succeed())
		Expect(names).To(ConsistOf("cache"))
	})

	It("should serialize a stats snapshot", func() {
		m.RegisterStats("cache", &sampleSource{
			stats: sampleStats{Hits: 3, Misses: 4},
		})

		rec := get("/api/stats/cache")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should return 404 for unknown stats", func() {
		rec := get("/api/stats/none")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should report resources", func() {
		rec := get("/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should reject an invalid profiling duration", func() {
		rec := get("/api/profile?seconds=abc")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should serve the index page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("cachesim monitor"))
	})

	It("should start and stop the server", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(HavePrefix("http://localhost:"))

		rsp, err := http.Get(url + "/api/progress")
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		Expect(m.Close()).To(Succeed())
	})
})
