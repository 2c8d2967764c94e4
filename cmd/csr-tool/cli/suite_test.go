package cli

import (
	"bytes"
	"os"

	"github.com/alecthomas/kong"
	"github.com/effective-security/x/ctl"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

type testSuite struct {
	suite.Suite

	appFlags []string

	ctl *Cli
	fs  afero.Fs
	// Out is the outpub buffer
	Out bytes.Buffer
}

func (s *testSuite) SetupTest() {
	s.Out.Reset()
	s.fs = afero.NewMemMapFs()
	s.ctl = &Cli{}

	s.ctl.WithErrWriter(&s.Out).
		WithWriter(&s.Out).
		WithFS(s.fs)

	parser, err := kong.New(s.ctl,
		kong.Name("csr-tool"),
		kong.Description("CLI tool to create multi-domain certificate requests"),
		kong.Writers(&s.Out, &s.Out),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{})
	if err != nil {
		s.FailNow("unexpected error constructing Kong: %+v", err)
	}

	_, err = parser.Parse(s.appFlags)
	if err != nil {
		s.FailNow("unexpected error parsing: %+v", err)
	}

	// the engine config is read from the test file system
	if s.ctl.Cfg != "" {
		b, err := os.ReadFile(s.ctl.Cfg)
		s.Require().NoError(err)
		s.WriteFile(s.ctl.Cfg, b)
	}
}

// HasText is a helper method to assert that the out stream contains the supplied
// text somewhere
func (s *testSuite) HasText(texts ...string) {
	outStr := s.Out.String()
	for _, t := range texts {
		s.Contains(outStr, t)
	}
}

// HasNoText is a helper method to assert that the out stream does not contain
// the supplied text
func (s *testSuite) HasNoText(texts ...string) {
	outStr := s.Out.String()
	for _, t := range texts {
		s.NotContains(outStr, t)
	}
}

// WriteFile copies the file content into the test file system
func (s *testSuite) WriteFile(name string, data []byte) {
	s.Require().NoError(afero.WriteFile(s.fs, name, data, 0644))
}
