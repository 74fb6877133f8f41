package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classpulse/internal/model"
)

func TestSearchMapsHits(t *testing.T) {
	repo := &fakeEmbeddingRepo{records: []model.EmbeddingRecord{
		{ResponseID: "r1", Text: "labs were great", Metadata: map[string]string{"week": "3"}},
		{ResponseID: "r2", Text: "more lab time please"},
	}}
	provider := &fakeProvider{vector: []float64{0.1, 0.2}}
	svc := NewSearchService(repo, provider, zap.NewNop())

	hits, err := svc.Search(context.Background(), "lab feedback", "subj-1", 10, 0.7)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "labs were great", hits[0].Text)
	assert.Equal(t, "r1", hits[0].ResponseID)
	assert.Equal(t, map[string]string{"week": "3"}, hits[0].Metadata)
}

func TestSearchEmbedFailurePropagates(t *testing.T) {
	provider := &fakeProvider{embedErr: errors.New("provider down")}
	svc := NewSearchService(&fakeEmbeddingRepo{}, provider, zap.NewNop())

	_, err := svc.Search(context.Background(), "anything", "subj-1", 0, 0.7)
	require.Error(t, err)
}

func TestIndexStoresEmbedding(t *testing.T) {
	repo := &fakeEmbeddingRepo{}
	provider := &fakeProvider{vector: []float64{0.4, 0.5}}
	svc := NewSearchService(repo, provider, zap.NewNop())

	err := svc.Index(context.Background(), "subj-1", "r7", "the pace is fine", map[string]string{"week": "5"})
	require.NoError(t, err)

	require.Len(t, repo.inserted, 1)
	record := repo.inserted[0]
	assert.Equal(t, "subj-1", record.SubjectID)
	assert.Equal(t, "r7", record.ResponseID)
	assert.Equal(t, "the pace is fine", record.Text)
	assert.Equal(t, []float64{0.4, 0.5}, record.Vector)
}

func TestChatAskRejectsEmptyQuery(t *testing.T) {
	svc := NewChatService(&fakeEmbeddingRepo{}, &fakeProvider{}, zap.NewNop())

	_, err := svc.Ask(context.Background(), "subj-1", "   ")

	var validation *model.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestChatAskGroundsAnswerInSources(t *testing.T) {
	repo := &fakeEmbeddingRepo{records: []model.EmbeddingRecord{
		{ResponseID: "r1", Text: "homework load is heavy"},
	}}
	provider := &fakeProvider{
		vector:       []float64{0.3},
		completeText: "Students find the homework load heavy.",
	}
	svc := NewChatService(repo, provider, zap.NewNop())

	answer, err := svc.Ask(context.Background(), "subj-1", "How do students feel about homework?")
	require.NoError(t, err)

	assert.Equal(t, "How do students feel about homework?", answer.Query)
	assert.Equal(t, "Students find the homework load heavy.", answer.Answer)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "r1", answer.Sources[0].ResponseID)
}

func TestBuildChatPrompt(t *testing.T) {
	prompt := buildChatPrompt("Is the pace ok?", []string{"Student: too fast"})
	assert.Contains(t, prompt, "Student: too fast")
	assert.Contains(t, prompt, "Question: Is the pace ok?")

	empty := buildChatPrompt("Is the pace ok?", nil)
	assert.Contains(t, empty, "No relevant quotes were found.")
}
