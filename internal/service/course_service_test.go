package service

import (
	"context"
	"encoding/json"
	"testing"

	"learnsphere_backend/internal/model"
	"learnsphere_backend/internal/repository"
	"learnsphere_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator is the canned-output Generator used across service tests.
type fakeGenerator struct {
	jsonResponse string
	chatReply    string
	err          error
	lastPrompt   string
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string, schema map[string]any) (json.RawMessage, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.jsonResponse), nil
}

func (f *fakeGenerator) Chat(ctx context.Context, system string, history []ChatMessage, message string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.chatReply, nil
}

const generatedCourseJSON = `{
	"title": "Mastering Go",
	"description": "A practical introduction.",
	"chapters": [
		{
			"title": "Getting Started",
			"lessons": [
				{
					"title": "Hello World",
					"content": "<p>Your first program.</p>",
					"quiz": {
						"questions": [
							{"question": "Which keyword starts a function?", "options": ["func", "def", "fn", "function"], "answer": "func"},
							{"question": "Bogus one", "options": ["a", "b"], "correctAnswer": "z"}
						]
					}
				},
				{
					"title": "Packages",
					"content": "<p>Organizing code.</p>",
					"xp": 20
				}
			]
		},
		{
			"title": "Beyond Basics",
			"lessons": [
				{"title": "Interfaces", "content": "<p>Behavior contracts.</p>"}
			]
		}
	]
}`

func newCourseFixture(t *testing.T, gen Generator) (*CourseService, *repository.CourseRepository) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewCourseRepository(db)
	return NewCourseService(repo, gen, nil), repo
}

func TestGenerateBuildsNormalizedCourse(t *testing.T) {
	gen := &fakeGenerator{jsonResponse: generatedCourseJSON}
	svc, repo := newCourseFixture(t, gen)

	course, err := svc.Generate(t.Context(), 3, "golang", model.Beginner)
	require.NoError(t, err)
	require.NotEmpty(t, course.ID)
	assert.Contains(t, gen.lastPrompt, "golang")

	reloaded, err := repo.FindByIDAndOwner(course.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, "Mastering Go", reloaded.Title)
	assert.Equal(t, "golang", reloaded.Topic)
	require.Len(t, reloaded.Chapters, 2)
	assert.True(t, reloaded.Chapters[0].Unlocked)
	assert.False(t, reloaded.Chapters[1].Unlocked)

	// Missing imageUrl falls back to a topic-based placeholder.
	assert.Contains(t, reloaded.ImageURL, "unsplash.com")

	first := reloaded.Lesson(0, 0)
	require.NotNil(t, first)
	assert.Equal(t, 10, first.XP, "lesson XP defaults to 10")
	assert.Equal(t, 20, reloaded.Lesson(0, 1).XP)

	require.NotNil(t, first.Quiz)
	assert.Equal(t, "Quiz for Hello World", first.Quiz.Title, "missing quiz title gets a default")
	require.Len(t, first.Quiz.Questions, 1, "questions whose answer is not among the options are dropped")
	assert.Equal(t, "func", first.Quiz.Questions[0].CorrectAnswer, "the misnamed answer field is folded in")
}

func TestGenerateRejectsInvalidDocument(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing chapters", `{"title": "x", "description": "y"}`},
		{"empty chapters", `{"title": "x", "description": "y", "chapters": []}`},
		{"wrong types", `{"title": 5, "description": "y", "chapters": "no"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newCourseFixture(t, &fakeGenerator{jsonResponse: tt.body})
			_, err := svc.Generate(t.Context(), 3, "golang", model.Beginner)
			assert.ErrorIs(t, err, util.ErrAIMalformedOutput)
		})
	}
}

func TestGeneratePropagatesUpstreamError(t *testing.T) {
	svc, _ := newCourseFixture(t, &fakeGenerator{err: util.ErrAIUnavailable})
	_, err := svc.Generate(t.Context(), 3, "golang", model.Beginner)
	assert.ErrorIs(t, err, util.ErrAIUnavailable)
}

func TestGetComputesUnlockState(t *testing.T) {
	svc, repo := newCourseFixture(t, &fakeGenerator{jsonResponse: generatedCourseJSON})

	course, err := svc.Generate(t.Context(), 3, "golang", model.Beginner)
	require.NoError(t, err)

	view, err := svc.Get(course.ID, 3)
	require.NoError(t, err)

	assert.True(t, view.Chapters[0].Unlocked)
	assert.False(t, view.Chapters[1].Unlocked)
	assert.True(t, view.Chapters[0].Lessons[0].Unlocked)
	assert.False(t, view.Chapters[0].Lessons[1].Unlocked)

	// Completing the first lesson opens the second on the next read.
	lesson := course.Lesson(0, 0)
	lesson.Completed = true
	require.NoError(t, repo.SaveLesson(lesson))

	view, err = svc.Get(course.ID, 3)
	require.NoError(t, err)
	assert.True(t, view.Chapters[0].Lessons[1].Unlocked)

	_, err = svc.Get(course.ID, 99)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestDeleteScopedToOwner(t *testing.T) {
	svc, _ := newCourseFixture(t, &fakeGenerator{jsonResponse: generatedCourseJSON})

	course, err := svc.Generate(t.Context(), 3, "golang", model.Beginner)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(course.ID, 99), util.ErrCourseNotFound)
	require.NoError(t, svc.Delete(course.ID, 3))
	assert.ErrorIs(t, svc.Delete(course.ID, 3), util.ErrCourseNotFound)
}

func TestListNewestFirst(t *testing.T) {
	svc, _ := newCourseFixture(t, &fakeGenerator{jsonResponse: generatedCourseJSON})

	for range 2 {
		_, err := svc.Generate(t.Context(), 3, "golang", model.Beginner)
		require.NoError(t, err)
	}

	views, err := svc.List(3)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	views, err = svc.List(42)
	require.NoError(t, err)
	assert.Empty(t, views)
}
