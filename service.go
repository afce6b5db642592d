package md2docx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jinde/go-md2docx/internal/config"
)

// Service converts Markdown documents to styled Word or PDF files.
// A Service is safe for concurrent use: each Convert call builds its own
// pipeline state and diagram resolver.
type Service struct {
	cfg      serviceConfig
	conf     *config.Config
	resolver diagramResolver // test seam; nil means one krokiResolver per run
	warn     io.Writer
}

// New creates a Service with the given fonts configuration and options.
// A nil conf uses the built-in defaults; a partial one has its missing
// values filled in, so a zero-valued Config is safe.
func New(conf *config.Config, opts ...Option) *Service {
	if conf == nil {
		conf = config.Default()
	} else {
		c := *conf
		c.Normalize()
		conf = &c
	}
	s := &Service{
		cfg: serviceConfig{
			timeout:  defaultTimeout,
			endpoint: defaultDiagramEndpoint,
		},
		conf: conf,
		warn: io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert parses input.Markdown and renders it in the requested format.
//
// Degraded conditions (unresolvable diagrams, missing images, missing PDF
// fonts) never fail the conversion: they are reported to the warning writer
// and the output carries a visible downgrade instead. Only invalid input
// and rendering failures return errors.
func (s *Service) Convert(ctx context.Context, input Input) ([]byte, error) {
	if strings.TrimSpace(input.Markdown) == "" {
		return nil, ErrEmptyMarkdown
	}
	format := input.Format
	if format == "" {
		format = FormatDocx
	}
	if format != FormatDocx && format != FormatPDF {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, input.Format)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocks := Parse(input.Markdown)

	// The resolver's temp assets must survive until the renderer has read
	// them, so the resolver is closed here, not in the resolve stage.
	resolver := s.resolver
	if resolver == nil {
		kr := newKrokiResolver(s.cfg.endpoint, s.cfg.timeout)
		defer kr.Close()
		resolver = kr
	}

	blocks, err := s.resolveDiagrams(ctx, blocks, resolver)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if format == FormatPDF {
		return renderPDF(s.conf, blocks, input.BaseDir, s.warnf)
	}
	return renderDocx(s.conf, blocks, input.BaseDir, s.warnf)
}

// resolveDiagrams replaces each diagram block with its rendered image. A
// diagram the resolver cannot render is downgraded in place to a visible
// failure marker followed by the source as a plain code block, so the
// renderers never see an unresolved diagram by accident.
func (s *Service) resolveDiagrams(ctx context.Context, blocks []Block, resolver diagramResolver) ([]Block, error) {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		d, ok := b.(Diagram)
		if !ok {
			out = append(out, b)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, err := resolver.Resolve(ctx, d.Source)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.warnf("diagram rendering failed: %v", err)
			out = append(out,
				Paragraph{Spans: []Span{{Text: diagramFailedMarker}}},
				CodeBlock{Language: diagramKeyword, Text: d.Source},
			)
			continue
		}
		d.ImagePath = path
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) warnf(format string, args ...any) {
	fmt.Fprintf(s.warn, "warning: "+format+"\n", args...)
}
