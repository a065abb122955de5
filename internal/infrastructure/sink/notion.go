package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jomei/notionapi"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// Notion caps a single rich text block at 2000 characters.
const notionTextLimit = 2000

type pageCreator interface {
	Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

// NotionSink clips records into a Notion database.
type NotionSink struct {
	pages  pageCreator
	dbID   notionapi.DatabaseID
	logger *slog.Logger
}

var _ ports.Sink = (*NotionSink)(nil)

// NewNotionSink builds a Notion client for the given integration token.
func NewNotionSink(token, databaseID string, logger *slog.Logger) (*NotionSink, error) {
	if token == "" || databaseID == "" {
		return nil, fmt.Errorf("notion sink misconfigured")
	}
	client := notionapi.NewClient(notionapi.Token(token))
	return &NotionSink{
		pages:  client.Page,
		dbID:   notionapi.DatabaseID(databaseID),
		logger: logger,
	}, nil
}

// Persist creates one database page per record.
func (s *NotionSink) Persist(ctx context.Context, record domain.NewsRecord) error {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: s.dbID,
		},
		Properties: recordProperties(record),
	}

	page, err := s.pages.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("notion create page: %w", err)
	}

	s.logger.Info("record clipped to notion", "symbol", record.Symbol, "page_id", page.ID)
	return nil
}

func recordProperties(r domain.NewsRecord) notionapi.Properties {
	props := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(r.Headline),
		},
		"Symbol": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: r.Symbol},
		},
		"Company": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(r.CompanyName),
		},
		"Confidence": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: r.Confidence,
		},
		"Conclusion": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(r.Conclusion),
		},
		"Published": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(r.PublishedLabel),
		},
	}
	if r.NewsDate != "" {
		props["News Date"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(r.NewsDate),
		}
	}
	if r.Link != "" {
		props["URL"] = notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  r.Link,
		}
	}
	return props
}

func richText(s string) []notionapi.RichText {
	runes := []rune(s)
	if len(runes) > notionTextLimit {
		s = string(runes[:notionTextLimit])
	}
	return []notionapi.RichText{{Text: &notionapi.Text{Content: s}}}
}
