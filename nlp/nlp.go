package nlp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"go-reviewlens/types"
	"log"
	"sort"

	language "cloud.google.com/go/language/apiv2"
	"cloud.google.com/go/language/apiv2/languagepb"
	"github.com/googleapis/gax-go/v2"
	lru "github.com/hashicorp/golang-lru"
	"google.golang.org/api/option"
)

var ErrMissingCredentials = errors.New("natural language credentials are not configured")

// EntityClient is the part of *language.Client the extractor needs.
type EntityClient interface {
	AnalyzeEntities(ctx context.Context, req *languagepb.AnalyzeEntitiesRequest, opts ...gax.CallOption) (*languagepb.AnalyzeEntitiesResponse, error)
}

// structuredTypes carry no proper/common distinction but are still named entities.
var structuredTypes = map[languagepb.Entity_Type]bool{
	languagepb.Entity_ADDRESS:      true,
	languagepb.Entity_DATE:         true,
	languagepb.Entity_NUMBER:       true,
	languagepb.Entity_PRICE:        true,
	languagepb.Entity_PHONE_NUMBER: true,
}

// NewClient creates the Natural Language API client from base64 encoded
// service account JSON. It is called once at startup.
func NewClient(ctx context.Context, encodedCreds string) (*language.Client, error) {
	if encodedCreds == "" {
		return nil, ErrMissingCredentials
	}
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("decode natural language credentials: %w", err)
	}

	client, err := language.NewClient(ctx, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("create natural language client: %w", err)
	}
	return client, nil
}

type Extractor struct {
	client        EntityClient
	includeCommon bool
	cache         *lru.Cache
}

type Options struct {
	// IncludeCommon keeps common-noun mentions such as "soup".
	IncludeCommon bool
	// CacheSize bounds the per-text result cache. Zero disables it.
	CacheSize int
}

// NewExtractor wraps client. A nil client gives an extractor that always
// returns no entities.
func NewExtractor(client EntityClient, opts Options) *Extractor {
	e := &Extractor{includeCommon: opts.IncludeCommon}
	if c, ok := client.(*language.Client); ok && c == nil {
		client = nil
	}
	e.client = client

	if opts.CacheSize > 0 {
		cache, err := lru.New(opts.CacheSize)
		if err != nil {
			log.Printf("Entity cache disabled: %v", err)
		} else {
			e.cache = cache
		}
	}
	return e
}

func (e *Extractor) Enabled() bool {
	return e != nil && e.client != nil
}

// Extract returns the named entities of text in order of appearance.
func (e *Extractor) Extract(ctx context.Context, text string) ([]types.Entity, error) {
	if !e.Enabled() || types.IsBlankReview(text) {
		return []types.Entity{}, nil
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(text); ok {
			return copyEntities(cached.([]types.Entity)), nil
		}
	}

	req := &languagepb.AnalyzeEntitiesRequest{
		Document: &languagepb.Document{
			Source: &languagepb.Document_Content{
				Content: text,
			},
			Type: languagepb.Document_PLAIN_TEXT,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	}

	resp, err := e.client.AnalyzeEntities(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeEntities error: %w", err)
	}

	entities := e.flatten(resp.GetEntities())
	if e.cache != nil {
		e.cache.Add(text, copyEntities(entities))
	}
	return entities, nil
}

type positioned struct {
	entity types.Entity
	offset int32
}

// flatten turns the API's entity/mention tree into one pair per mention.
func (e *Extractor) flatten(found []*languagepb.Entity) []types.Entity {
	var spans []positioned
	for _, ent := range found {
		label := ent.GetType().String()
		for _, m := range ent.GetMentions() {
			if !e.keep(ent.GetType(), m.GetType()) {
				continue
			}
			text := m.GetText().GetContent()
			if text == "" {
				continue
			}
			spans = append(spans, positioned{
				entity: types.Entity{Text: text, Label: label},
				offset: m.GetText().GetBeginOffset(),
			})
		}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].offset < spans[j].offset
	})

	entities := make([]types.Entity, 0, len(spans))
	for _, s := range spans {
		entities = append(entities, s.entity)
	}
	return entities
}

func (e *Extractor) keep(entType languagepb.Entity_Type, mentionType languagepb.EntityMention_Type) bool {
	if structuredTypes[entType] {
		return true
	}
	switch mentionType {
	case languagepb.EntityMention_PROPER:
		return true
	case languagepb.EntityMention_COMMON:
		return e.includeCommon
	default:
		return false
	}
}

func copyEntities(in []types.Entity) []types.Entity {
	out := make([]types.Entity, len(in))
	copy(out, in)
	return out
}
