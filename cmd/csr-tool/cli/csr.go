package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/guid"
	"github.com/effective-security/xcsr/certutil"
	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/csr"
	"github.com/effective-security/xcsr/x/print"
	"github.com/effective-security/xlog"
)

// GenCmd specifies flags for Gen command
type GenCmd struct {
	Profile  string   `help:"file name with CSR profile, YAML or JSON"`
	San      []string `help:"DNS names for Subject Alternative Name"`
	CN       string   `name:"cn" help:"subject common name"`
	Curve    string   `help:"named curve: P-256, P-384 or P-521"`
	Digest   string   `help:"signature digest: sha256, sha384 or sha512"`
	KeyLabel string   `help:"label for generated key, suffix * is replaced with a unique value"`
	Out      string   `short:"o" help:"output file for DER encoded request, csr.der by default"`
	Pem      string   `help:"optional output file for PEM encoded request"`
	KeyOut   string   `help:"optional output file for private key, supported by the in-memory engine only"`
	PubOut   string   `help:"optional output file for PEM encoded public key"`
}

// Run the command
func (a *GenCmd) Run(ctx *Cli) error {
	p := csr.DefaultProfile()
	if a.Profile != "" {
		loaded, err := csr.LoadProfile(ctx.FS(), a.Profile)
		if err != nil {
			return err
		}
		if p, err = p.Merge(loaded); err != nil {
			return err
		}
	}

	p, err := p.Merge(&csr.Profile{
		CommonName: a.CN,
		SAN:        a.San,
		Curve:      a.Curve,
		Digest:     a.Digest,
		KeyLabel:   a.KeyLabel,
		Output:     a.Out,
	})
	if err != nil {
		return err
	}
	// fail on invalid names before a key is created in the engine
	if _, err = csr.NewSubjectAltName(p.SAN).Build(&csr.ExtensionContext{Subject: p.Name()}); err != nil {
		return err
	}

	curve, err := p.KeyCurve()
	if err != nil {
		return err
	}
	opts, err := p.BuilderOptions()
	if err != nil {
		return err
	}
	builder, err := csr.NewBuilder(opts...)
	if err != nil {
		return err
	}

	engine, err := ctx.KeyEngine()
	if err != nil {
		return err
	}
	var exporter cryptoprov.KeyExporter
	if a.KeyOut != "" {
		var ok bool
		if exporter, ok = engine.(cryptoprov.KeyExporter); !ok {
			return errors.Errorf("key export is not supported by %s engine", engine.Manufacturer())
		}
	}

	kp, err := engine.GenerateKey(ctx.Context(), prefixKeyLabel(p.KeyLabel), curve)
	if err != nil {
		return errors.WithMessage(err, "unable to generate key")
	}
	defer kp.Close()

	logger.KV(xlog.INFO, "id", kp.ID(), "label", kp.Label(), "curve", kp.Curve())

	req, err := builder.Create(kp, p.SAN)
	if err != nil {
		return err
	}

	fs := ctx.FS()
	if err = csr.WriteDER(fs, p.Output, req); err != nil {
		return err
	}
	if a.Pem != "" {
		if err = csr.WriteFile(fs, a.Pem, req.PEM(), 0644); err != nil {
			return err
		}
	}
	if a.PubOut != "" {
		pub, err := certutil.EncodePublicKeyToPEM(req.PublicKey())
		if err != nil {
			return err
		}
		if err = csr.WriteFile(fs, a.PubOut, pub, 0644); err != nil {
			return err
		}
	}
	if exporter != nil {
		key, err := exporter.ExportKey(kp)
		if err != nil {
			return errors.WithMessage(err, "unable to export key")
		}
		if err = csr.WriteFile(fs, a.KeyOut, key, 0600); err != nil {
			return err
		}
	}

	w := ctx.Writer()
	print.CertificateRequest(w, req.X509())
	fmt.Fprintf(w, "Key: %s\n", kp.ID())
	fmt.Fprintf(w, "Output: %s\n", p.Output)
	return nil
}

// InfoCmd specifies flags for Info command
type InfoCmd struct {
	Csr  string `kong:"arg" required:"" help:"CSR file name, DER or PEM encoded"`
	JSON bool   `name:"json" help:"print SAN entries as JSON"`
}

// Run the command
func (a *InfoCmd) Run(ctx *Cli) error {
	req, err := loadRequest(ctx, a.Csr)
	if err != nil {
		return err
	}

	if a.JSON {
		ctx.WriteJSON(map[string]any{
			"subject": req.Subject().String(),
			"san":     req.SANEntries(),
		})
		return nil
	}

	print.CertificateRequest(ctx.Writer(), req.X509())
	return nil
}

// VerifyCmd specifies flags for Verify command
type VerifyCmd struct {
	Csr string   `kong:"arg" required:"" help:"CSR file name, DER or PEM encoded"`
	San []string `help:"expected DNS names, in order"`
}

// Run the command
func (a *VerifyCmd) Run(ctx *Cli) error {
	req, err := loadRequest(ctx, a.Csr)
	if err != nil {
		return err
	}

	if err = csr.Verify(req); err != nil {
		return err
	}
	if len(a.San) > 0 && csr.JoinSAN(a.San) != req.SAN() {
		return errors.Errorf("SAN mismatch: expected %q, found %q", csr.JoinSAN(a.San), req.SAN())
	}

	fmt.Fprintf(ctx.Writer(), "OK: %s\n", req.SAN())
	return nil
}

// CurvesCmd prints supported curves
type CurvesCmd struct{}

// Run the command
func (a *CurvesCmd) Run(ctx *Cli) error {
	print.Curves(ctx.Writer(), cryptoprov.SupportedCurves())
	return nil
}

func loadRequest(ctx *Cli, filename string) (*csr.Request, error) {
	b, err := ctx.ReadFile(filename)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to load CSR file")
	}
	if strings.HasPrefix(strings.TrimSpace(string(b)), "-----BEGIN") {
		return csr.ParsePEM(b)
	}
	return csr.ParseDER(b)
}

func prefixKeyLabel(label string) string {
	if strings.HasSuffix(label, "*") {
		g := guid.MustCreate()
		t := time.Now().UTC()
		label = strings.TrimSuffix(label, "*") +
			fmt.Sprintf("_%04d%02d%02d%02d%02d%02d_%s", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), g[:4])
	}

	return label
}
