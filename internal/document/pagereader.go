// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/pdiddy/study-engine/pkg/types"
)

// pageParsePrompt instructs the model to transcribe one PDF page.
const pageParsePrompt = `Transcribe the main textual content of this PDF page.

- Output plain text only, in normal reading order; concatenate columns.
- Exclude headers, footers, page numbers, and image captions.
- Preserve paragraph breaks with blank lines.
- If the page contains no readable text, output nothing.`

// defaultPageModel reads PDF pages when the config names no model.
const defaultPageModel = "gpt-4o-mini"

// PageParser turns one single-page PDF into text.
type PageParser interface {
	ParsePage(ctx context.Context, page []byte) (string, error)
}

// OpenAIPageParser sends each page as an inline PDF attachment and asks
// the model to transcribe it. Digital PDFs with embedded text transcribe
// reliably; scanned pages may come back empty and fall through to OCR.
type OpenAIPageParser struct {
	cfg    types.AIConfig
	client openai.Client
}

// NewOpenAIPageParser builds a parser from the AI config. Extra request
// options (e.g. a test server base URL) are appended after the API key.
func NewOpenAIPageParser(cfg types.AIConfig, opts ...option.RequestOption) *OpenAIPageParser {
	all := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &OpenAIPageParser{
		cfg:    cfg,
		client: openai.NewClient(all...),
	}
}

// ParsePage transcribes one single-page PDF.
func (p *OpenAIPageParser) ParsePage(ctx context.Context, page []byte) (string, error) {
	model := p.cfg.Model
	if model == "" {
		model = defaultPageModel
	}

	encoded := base64.StdEncoding.EncodeToString(page)
	resp, err := p.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						responses.ResponseInputContentUnionParam{
							OfInputFile: &responses.ResponseInputFileParam{
								FileData: openai.String("data:application/pdf;base64," + encoded),
								Filename: openai.String("page.pdf"),
							},
						},
						responses.ResponseInputContentParamOfInputText(pageParsePrompt),
					},
					"user",
				),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("parsing page with %s: %w", model, err)
	}
	return strings.TrimSpace(resp.OutputText()), nil
}
