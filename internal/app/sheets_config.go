package app

import (
	"strings"

	"github.com/classpad/answerboard/internal/sheets"
)

// ClientConfig converts the application sheets configuration into the sheets package representation.
func (c SheetsConfig) ClientConfig() sheets.Config {
	return sheets.Config{
		BaseURL:       strings.TrimSpace(c.BaseURL),
		SpreadsheetID: strings.TrimSpace(c.SpreadsheetID),
		Token:         strings.TrimSpace(c.Token),
		Timeout:       c.Timeout,
	}
}
