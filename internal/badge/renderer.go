package badge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"visitgate/internal/platform/config"
	dErrors "visitgate/pkg/domain-errors"
)

// Renderer turns badge data into a PDF document.
type Renderer interface {
	Render(ctx context.Context, badge Badge) ([]byte, error)
}

// HTTPRenderer calls the external badge rendering service. The service takes
// the badge JSON and answers with the finished PDF bytes.
type HTTPRenderer struct {
	url    string
	client *http.Client
}

func NewHTTPRenderer(cfg config.BadgeConfig) *HTTPRenderer {
	return &HTTPRenderer{
		url:    cfg.RendererURL,
		client: &http.Client{Timeout: cfg.RendererTimeout},
	}
}

func (r *HTTPRenderer) Render(ctx context.Context, badge Badge) ([]byte, error) {
	payload, err := json.Marshal(badge)
	if err != nil {
		return nil, fmt.Errorf("marshal badge: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "badge renderer unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("badge renderer returned %d", resp.StatusCode))
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "badge renderer response unreadable", err)
	}
	if len(pdf) == 0 {
		return nil, dErrors.New(dErrors.CodeUnavailable, "badge renderer returned an empty document")
	}
	return pdf, nil
}

// FallbackRenderer produces a minimal single-page PDF when no renderer
// service is configured. The pass has the text fields but no QR image; the
// QR token is printed so the gate can be passed by manual lookup.
type FallbackRenderer struct{}

func (FallbackRenderer) Render(_ context.Context, badge Badge) ([]byte, error) {
	lines := []string{
		"VISITOR PASS",
		"Name: " + badge.VisitorName,
		"Company: " + badge.CompanyName,
		"Location: " + badge.LocationName,
		"Host: " + badge.HostName,
		"Purpose: " + badge.Purpose,
		"Date: " + badge.VisitingDate.Format("2006-01-02"),
		"Token: " + badge.QRToken,
	}
	return minimalPDF(lines), nil
}

// minimalPDF hand-assembles a one-page PDF with Helvetica text lines. Good
// enough to print and scan manually; replaced by the render service in
// production.
func minimalPDF(lines []string) []byte {
	var content bytes.Buffer
	content.WriteString("BT /F1 14 Tf 50 780 Td 20 TL\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "(%s) Tj T*\n", escapePDFString(line))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, object := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, object)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefStart)
	return buf.Bytes()
}

func escapePDFString(s string) string {
	var out bytes.Buffer
	for _, r := range s {
		switch r {
		case '(', ')', '\\':
			out.WriteByte('\\')
			out.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
