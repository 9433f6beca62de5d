package reframecmder_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	reframecmder "github.com/papercomputeco/innerai/cmd/innerai/reframe"
	"github.com/papercomputeco/innerai/pkg/llm"
)

var _ = Describe("Reframe command", func() {
	var (
		server  *httptest.Server
		lastReq llm.ReframeRequest
		status  int
	)

	BeforeEach(func() {
		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/reframe"))
			_ = json.NewDecoder(r.Body).Decode(&lastReq)
			w.WriteHeader(status)
			if status != http.StatusOK {
				_ = json.NewEncoder(w).Encode(llm.ErrorResponse{Error: "emotion and belief are required."})
				return
			}
			_ = json.NewEncoder(w).Encode(llm.ReframeResponse{Reframe: "You are learning, not failing."})
		}))
		DeferCleanup(server.Close)
	})

	execute := func(args ...string) (string, error) {
		root := &cobra.Command{Use: "innerai", SilenceUsage: true, SilenceErrors: true}
		root.PersistentFlags().String("config-dir", GinkgoT().TempDir(), "")
		root.AddCommand(reframecmder.NewReframeCmd())

		out := &bytes.Buffer{}
		root.SetOut(out)
		root.SetArgs(append([]string{"reframe", "--gateway-target", server.URL}, args...))
		err := root.Execute()
		return out.String(), err
	}

	It("joins the belief words and prints the reframe", func() {
		out, err := execute("sad", "I", "always", "fail")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("You are learning, not failing."))
		Expect(lastReq).To(Equal(llm.ReframeRequest{Emotion: "sad", Belief: "I always fail"}))
	})

	It("requires an emotion and a belief", func() {
		_, err := execute("sad")
		Expect(err).To(HaveOccurred())
	})

	It("returns the gateway error", func() {
		status = http.StatusBadRequest
		_, err := execute("sad", "I always fail")
		Expect(err).To(MatchError(ContainSubstring("emotion and belief are required.")))
	})
})
