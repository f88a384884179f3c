package export

import "fmt"

// Service renders watch-history exports. The caller assembles Data; this
// package owns only templating and format conversion.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Export renders the history document in the requested format.
func (s *Service) Export(data Data, format Format) (*Result, error) {
	html, err := RenderHistoryHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch format {
	case FormatPDF:
		return renderPDF(html, data.ClubName)
	case FormatDOCX:
		return renderDOCX(html, data.ClubName)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
