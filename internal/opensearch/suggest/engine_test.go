package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/search-service/internal/opensearch/models"
	"github.com/rx3lixir/search-service/internal/opensearch/ranking"
	"github.com/rx3lixir/search-service/pkg/logger"
)

// fakeSource - источник с фиксированным ответом либо ошибкой
type fakeSource struct {
	name        string
	suggestions []Suggestion
	err         error
	calls       int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Suggest(_ context.Context, _ *Request) ([]Suggestion, error) {
	f.calls++
	return f.suggestions, f.err
}

func newFakeEngine(byType map[string]*fakeSource, popular, spelling Source) *Engine {
	return NewEngine(
		func(docType string) Source {
			if src, ok := byType[docType]; ok {
				return src
			}
			return nil
		},
		popular,
		spelling,
		logger.NewNop(),
	)
}

func TestSuggestDedupeCaseInsensitive(t *testing.T) {
	byType := map[string]*fakeSource{
		models.TypeInstitution: {name: "institution", suggestions: []Suggestion{
			{Text: "MIT", Source: SourceInstitution, Score: 0.9},
		}},
		models.TypeProgram: {name: "program", suggestions: []Suggestion{
			{Text: "mit", Source: SourceProgram, Score: 0.7},
			{Text: "Mit", Source: SourceProgram, Score: 0.95},
		}},
	}

	engine := newFakeEngine(byType, nil, nil)

	resp, err := engine.Suggest(context.Background(), &Request{
		Prefix: "mi",
		Limit:  10,
		Types:  []string{models.TypeInstitution, models.TypeProgram},
	})
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)

	// Остается вариант с максимальным счетом
	assert.Equal(t, "Mit", resp.Suggestions[0].Text)
	assert.InDelta(t, 0.95, resp.Suggestions[0].Score, 1e-9)
}

func TestSuggestTieBreakBySourcePriority(t *testing.T) {
	byType := map[string]*fakeSource{
		models.TypeInstitution: {name: "institution", suggestions: []Suggestion{
			{Text: "Harvard University", Source: SourceInstitution, Score: 0.80},
		}},
		models.TypeFunding: {name: "funding", suggestions: []Suggestion{
			{Text: "Harvard Scholarship", Source: SourceFunding, Score: 0.85},
		}},
	}

	engine := newFakeEngine(byType, nil, nil)

	resp, err := engine.Suggest(context.Background(), &Request{
		Prefix: "harv",
		Limit:  10,
		Types:  []string{models.TypeInstitution, models.TypeFunding},
	})
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 2)

	// Разница 0.05 меньше эпсилона: побеждает приоритет источника
	assert.Equal(t, "Harvard University", resp.Suggestions[0].Text)
	assert.Equal(t, "Harvard Scholarship", resp.Suggestions[1].Text)
}

func TestSuggestClearScoreGapIgnoresPriority(t *testing.T) {
	byType := map[string]*fakeSource{
		models.TypeInstitution: {name: "institution", suggestions: []Suggestion{
			{Text: "Harvard University", Source: SourceInstitution, Score: 0.5},
		}},
		models.TypeFunding: {name: "funding", suggestions: []Suggestion{
			{Text: "Harvard Scholarship", Source: SourceFunding, Score: 0.9},
		}},
	}

	engine := newFakeEngine(byType, nil, nil)

	resp, err := engine.Suggest(context.Background(), &Request{
		Prefix: "harv",
		Limit:  10,
		Types:  []string{models.TypeInstitution, models.TypeFunding},
	})
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "Harvard Scholarship", resp.Suggestions[0].Text)
}

func TestSuggestSourceFailureIsolated(t *testing.T) {
	byType := map[string]*fakeSource{
		models.TypeInstitution: {name: "institution", err: errors.New("engine down")},
		models.TypeProgram: {name: "program", suggestions: []Suggestion{
			{Text: "Harvard CS PhD", Source: SourceProgram, Score: 0.9},
		}},
	}

	engine := newFakeEngine(byType, nil, nil)

	resp, err := engine.Suggest(context.Background(), &Request{
		Prefix: "harv",
		Limit:  10,
		Types:  []string{models.TypeInstitution, models.TypeProgram},
	})
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "Harvard CS PhD", resp.Suggestions[0].Text)
}

func TestSuggestSpellingGatedByResultCount(t *testing.T) {
	spelling := &fakeSource{name: "spelling", suggestions: []Suggestion{
		{Text: "harvard", Source: SourceSpelling, Score: 0.48},
	}}

	rich := map[string]*fakeSource{
		models.TypeInstitution: {name: "institution", suggestions: []Suggestion{
			{Text: "Harvard University", Source: SourceInstitution, Score: 0.9},
			{Text: "Harvard Law School", Source: SourceInstitution, Score: 0.85},
			{Text: "Harvard Medical School", Source: SourceInstitution, Score: 0.8},
			{Text: "Harvard Kennedy School", Source: SourceInstitution, Score: 0.75},
			{Text: "Harvard Extension", Source: SourceInstitution, Score: 0.7},
		}},
	}

	engine := newFakeEngine(rich, nil, spelling)
	_, err := engine.Suggest(context.Background(), &Request{
		Prefix: "harv",
		Limit:  10,
		Types:  []string{models.TypeInstitution},
	})
	require.NoError(t, err)
	// Результатов достаточно: к исправлениям опечаток не обращались
	assert.Zero(t, spelling.calls)

	poor := map[string]*fakeSource{
		models.TypeInstitution: {name: "institution"},
	}

	engine = newFakeEngine(poor, nil, spelling)
	resp, err := engine.Suggest(context.Background(), &Request{
		Prefix: "harv",
		Limit:  10,
		Types:  []string{models.TypeInstitution},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, spelling.calls)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, SourceSpelling, resp.Suggestions[0].Source)
}

func TestSuggestLimitAndHighlight(t *testing.T) {
	byType := map[string]*fakeSource{
		models.TypeInstitution: {name: "institution", suggestions: []Suggestion{
			{Text: "Harvard University", Source: SourceInstitution, Score: 0.9},
			{Text: "Harvard Law School", Source: SourceInstitution, Score: 0.5},
			{Text: "Harvard Extension", Source: SourceInstitution, Score: 0.3},
		}},
	}

	engine := newFakeEngine(byType, nil, nil)

	resp, err := engine.Suggest(context.Background(), &Request{
		Prefix: "harv",
		Limit:  2,
		Types:  []string{models.TypeInstitution},
	})
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "<em>Harv</em>ard University", resp.Suggestions[0].Highlight)
}

func TestSuggestContextualRerank(t *testing.T) {
	byType := map[string]*fakeSource{
		models.TypeInstitution: {name: "institution", suggestions: []Suggestion{
			{Text: "Stanford University", Source: SourceInstitution, Score: 0.60},
		}},
		models.TypeFunding: {name: "funding", suggestions: []Suggestion{
			{Text: "Stanford AI Research Grant", Source: SourceFunding, Score: 0.55},
		}},
	}

	engine := newFakeEngine(byType, nil, nil)

	resp, err := engine.Suggest(context.Background(), &Request{
		Prefix: "stan",
		Limit:  10,
		Types:  []string{models.TypeInstitution, models.TypeFunding},
		User: &ranking.UserContext{
			Preferences: []string{"ai research"},
			UserType:    "researcher",
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 2)

	// Грант получил +0.2 за интерес и +0.1 за тип пользователя:
	// 0.85 против 0.60, разрыв больше эпсилона
	assert.Equal(t, "Stanford AI Research Grant", resp.Suggestions[0].Text)
	assert.InDelta(t, 0.85, resp.Suggestions[0].Score, 1e-9)
}

func TestRequestValidate(t *testing.T) {
	short := &Request{Prefix: "a"}
	assert.Error(t, short.Validate())

	empty := &Request{Prefix: "   "}
	assert.Error(t, empty.Validate())

	tooMany := &Request{Prefix: "ab", Limit: 51}
	assert.Error(t, tooMany.Validate())

	unknown := &Request{Prefix: "ab", Types: []string{"martians"}}
	assert.Error(t, unknown.Validate())

	ok := &Request{Prefix: "ab"}
	require.NoError(t, ok.Validate())
	assert.Equal(t, 10, ok.Limit)
	assert.ElementsMatch(t, []string{models.TypeInstitution, models.TypeProgram, models.TypeFunding}, ok.Types)
}

func TestHighlightPrefix(t *testing.T) {
	assert.Equal(t, "<em>Harv</em>ard", highlightPrefix("Harvard", "harv"))
	assert.Equal(t, "MIT <em>Media</em> Lab", highlightPrefix("MIT Media Lab", "media"))
	assert.Equal(t, "", highlightPrefix("Oxford", "cam"))
}
