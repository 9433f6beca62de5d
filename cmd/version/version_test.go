package versioncmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/papercomputeco/innerai/cmd/version"
	"github.com/papercomputeco/innerai/pkg/utils"
)

var _ = Describe("Version command", func() {
	It("prints version, sha and build time", func() {
		cmd := versioncmder.NewVersionCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Version: " + utils.Version))
		Expect(out.String()).To(ContainSubstring("Sha: " + utils.Sha))
		Expect(out.String()).To(ContainSubstring("Built at: " + utils.Buildtime))
	})

	It("prints only the version with --short", func() {
		cmd := versioncmder.NewVersionCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs([]string{"--short"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(Equal(utils.Version + "\n"))
	})
})
