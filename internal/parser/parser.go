package parser

import (
	"fmt"

	"joblens/internal/logging"
	"joblens/internal/logging/types"
	"joblens/pkg/models"
	"joblens/pkg/utils"
)

// Parser turns raw backend payloads into loosely typed intermediate
// records. Extraction is best effort: a card missing fields still yields
// a record, and only a payload with no recognizable structure at all is
// an error.
type Parser struct {
	logger types.Logger
}

// New creates a parser.
func New() *Parser {
	return &Parser{logger: logging.GetGlobalLogger()}
}

// Parse extracts records from one payload. It returns
// utils.ErrParseUnrecognized when the payload matches none of the known
// formats.
func (p *Parser) Parse(payload *models.RawPayload) ([]models.IntermediateRecord, error) {
	if payload == nil || len(payload.Body) == 0 {
		return nil, fmt.Errorf("%w: empty payload", utils.ErrParseUnrecognized)
	}

	switch payload.Kind {
	case models.PayloadHTML:
		return p.parseHTML(payload)
	case models.PayloadJSON:
		return p.parseJSON(payload)
	default:
		return nil, fmt.Errorf("%w: unknown payload kind %q", utils.ErrParseUnrecognized, payload.Kind)
	}
}
