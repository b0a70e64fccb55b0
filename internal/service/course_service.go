package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"learnsphere_backend/internal/model"
	"learnsphere_backend/internal/repository"
	"learnsphere_backend/internal/util"
	"learnsphere_backend/pkg/logger"
	"learnsphere_backend/pkg/monitoring"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
	AI         Generator
	Storage    *StorageService
}

func NewCourseService(courseRepo *repository.CourseRepository, ai Generator, storage *StorageService) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		AI:         ai,
		Storage:    storage,
	}
}

// courseGenSchema constrains the Gemini response for course generation.
// Mirrors the lesson/quiz shape of the data model; semantic correctness
// of questions is not validated, only structure.
var courseGenSchema = map[string]any{
	"type":     "object",
	"required": []any{"title", "description", "chapters"},
	"properties": map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"level":       map[string]any{"type": "string"},
		"imageUrl":    map[string]any{"type": "string"},
		"chapters": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"title", "lessons"},
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"lessons": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"title", "content"},
							"properties": map[string]any{
								"title":   map[string]any{"type": "string"},
								"content": map[string]any{"type": "string"},
								"xp":      map[string]any{"type": "integer"},
								"quiz": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"title": map[string]any{"type": "string"},
										"questions": map[string]any{
											"type": "array",
											"items": map[string]any{
												"type":     "object",
												"required": []any{"question", "options"},
												"properties": map[string]any{
													"question":      map[string]any{"type": "string"},
													"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
													"correctAnswer": map[string]any{"type": "string"},
													"answer":        map[string]any{"type": "string"},
												},
											},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	},
}

var (
	compiledGenSchema     *jsonschema.Schema
	compileGenSchemaOnce  sync.Once
	compileGenSchemaError error
)

func compiledCourseSchema() (*jsonschema.Schema, error) {
	compileGenSchemaOnce.Do(func() {
		defBytes, err := json.Marshal(courseGenSchema)
		if err != nil {
			compileGenSchemaError = err
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileGenSchemaError = err
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://course-gen.json", def); err != nil {
			compileGenSchemaError = err
			return
		}
		compiledGenSchema, compileGenSchemaError = c.Compile("schema://course-gen.json")
	})
	return compiledGenSchema, compileGenSchemaError
}

// generatedCourse is the wire shape Gemini is asked to produce.
type generatedCourse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       string `json:"level"`
	ImageURL    string `json:"imageUrl"`
	Chapters    []struct {
		Title   string `json:"title"`
		Lessons []struct {
			Title   string   `json:"title"`
			Content string   `json:"content"`
			XP      int      `json:"xp"`
			Quiz    *genQuiz `json:"quiz"`
		} `json:"lessons"`
	} `json:"chapters"`
}

type genQuiz struct {
	Title     string        `json:"title"`
	Questions []genQuestion `json:"questions"`
}

type genQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	// Some generations misname the field; normalized away below.
	Answer string `json:"answer"`
}

func courseGenPrompt(topic string, level model.CourseLevel) string {
	return fmt.Sprintf(`You are an expert instructional designer. A user wants a course on the topic: %q at a %q level.
Generate a comprehensive, structured course plan tailored to that difficulty level. Add quizzes to each lesson and include a relevant royalty-free image URL based on the topic.
The output MUST be a single, valid JSON object and nothing else.

MUST follow these guidelines:
- At least 5-7 chapters.
- Each chapter must have at least 4 lessons.
- Each lesson must have at least 200 words of HTML content with headings, paragraphs, and lists.
- Each lesson must include a quiz with 3-5 multiple-choice questions, each with exactly 4 options, where "correctAnswer" is one of the options.
- The imageUrl should be a relevant royalty-free image link from Unsplash, using the course title as the search keyword.`, topic, level)
}

// Generate asks the AI collaborator for a full course plan, validates and
// normalizes the result and persists it for the owner. The first chapter
// starts unlocked, everything else locked.
func (s *CourseService) Generate(ctx context.Context, ownerID uint, topic string, level model.CourseLevel) (*model.Course, error) {
	start := time.Now()
	raw, err := s.AI.GenerateJSON(ctx, courseGenPrompt(topic, level), courseGenSchema)
	monitoring.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	gen, err := decodeGeneratedCourse(raw)
	if err != nil {
		return nil, err
	}

	course := buildCourse(gen, ownerID, topic, level)
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}

	logger.Log.Info("course generated",
		zap.Uint("ownerId", ownerID),
		zap.String("courseId", course.ID),
		zap.String("topic", topic),
		zap.Int("chapters", len(course.Chapters)))

	return course, nil
}

// decodeGeneratedCourse validates the raw document against the schema and
// applies the structural normalizations the original pipeline performed.
func decodeGeneratedCourse(raw json.RawMessage) (*generatedCourse, error) {
	schema, err := compiledCourseSchema()
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, util.ErrAIMalformedOutput
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrAIMalformedOutput, err)
	}

	var gen generatedCourse
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, util.ErrAIMalformedOutput
	}
	if len(gen.Chapters) == 0 {
		return nil, util.ErrAIMalformedOutput
	}
	return &gen, nil
}

func buildCourse(gen *generatedCourse, ownerID uint, topic string, level model.CourseLevel) *model.Course {
	course := &model.Course{
		OwnerID:     ownerID,
		Topic:       topic,
		Title:       gen.Title,
		Description: gen.Description,
		Level:       level,
		ImageURL:    gen.ImageURL,
	}
	if course.ImageURL == "" {
		query := gen.Title
		if query == "" {
			query = topic
		}
		course.ImageURL = "https://source.unsplash.com/800x600/?" + url.QueryEscape(query)
	}

	for ci, ch := range gen.Chapters {
		chapter := model.Chapter{
			Position: ci,
			Title:    ch.Title,
			Unlocked: ci == 0,
		}
		for li, l := range ch.Lessons {
			lesson := model.Lesson{
				Position: li,
				Title:    l.Title,
				Content:  l.Content,
				XP:       l.XP,
			}
			if lesson.XP <= 0 {
				lesson.XP = 10
			}
			if l.Quiz != nil && len(l.Quiz.Questions) > 0 {
				lesson.Quiz = normalizeQuiz(l.Quiz, l.Title)
			}
			chapter.Lessons = append(chapter.Lessons, lesson)
		}
		course.Chapters = append(course.Chapters, chapter)
	}
	return course
}

// normalizeQuiz fills a default title and folds the misnamed "answer"
// field into correctAnswer, dropping questions whose answer is not among
// the options.
func normalizeQuiz(q *genQuiz, lessonTitle string) *model.Quiz {
	quiz := &model.Quiz{Title: q.Title}
	if quiz.Title == "" {
		quiz.Title = "Quiz for " + lessonTitle
	}

	for _, gq := range q.Questions {
		answer := gq.CorrectAnswer
		if answer == "" {
			answer = gq.Answer
		}
		if gq.Question == "" || len(gq.Options) == 0 || !contains(gq.Options, answer) {
			continue
		}
		quiz.Questions = append(quiz.Questions, model.QuizQuestion{
			Question:      gq.Question,
			Options:       gq.Options,
			CorrectAnswer: answer,
		})
	}
	if len(quiz.Questions) == 0 {
		return nil
	}
	return quiz
}

func contains(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}

// CourseView decorates the persisted course with the computed unlock
// status of every chapter and lesson.
type CourseView struct {
	model.Course
	Chapters []ChapterView `json:"chapters"`
}

type ChapterView struct {
	model.Chapter
	Unlocked  bool         `json:"unlocked"`
	Completed bool         `json:"completed"`
	Lessons   []LessonView `json:"lessons"`
}

type LessonView struct {
	model.Lesson
	Unlocked bool `json:"unlocked"`
}

// List returns the owner's courses newest-first with unlock status
// computed from the completion chain, never from the stored mirrors.
func (s *CourseService) List(ownerID uint) ([]CourseView, error) {
	courses, err := s.CourseRepo.FindByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]CourseView, len(courses))
	for i := range courses {
		views[i] = newCourseView(&courses[i])
	}
	return views, nil
}

func (s *CourseService) Get(courseID string, ownerID uint) (*CourseView, error) {
	course, err := s.CourseRepo.FindByIDAndOwner(courseID, ownerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	view := newCourseView(course)
	return &view, nil
}

func newCourseView(course *model.Course) CourseView {
	view := CourseView{Course: *course}
	view.Chapters = make([]ChapterView, len(course.Chapters))
	for ci := range course.Chapters {
		cv := ChapterView{
			Chapter:   course.Chapters[ci],
			Unlocked:  course.IsChapterUnlocked(ci),
			Completed: course.IsChapterCompleted(ci),
		}
		cv.Lessons = make([]LessonView, len(course.Chapters[ci].Lessons))
		for li := range course.Chapters[ci].Lessons {
			cv.Lessons[li] = LessonView{
				Lesson:   course.Chapters[ci].Lessons[li],
				Unlocked: course.IsLessonUnlocked(ci, li),
			}
		}
		view.Chapters[ci] = cv
	}
	return view
}

func (s *CourseService) Delete(courseID string, ownerID uint) error {
	err := s.CourseRepo.DeleteByIDAndOwner(courseID, ownerID)
	if err == gorm.ErrRecordNotFound {
		return util.ErrCourseNotFound
	}
	return err
}

// UploadImage stores a custom cover image and points the course at it.
func (s *CourseService) UploadImage(ctx context.Context, courseID string, ownerID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if _, err := s.CourseRepo.FindByIDAndOwner(courseID, ownerID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", util.ErrCourseNotFound
		}
		return "", err
	}

	objectName := fmt.Sprintf("courses/%s/%d_%s", courseID, time.Now().Unix(), filename)
	imageURL, err := s.Storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return "", err
	}

	if err := s.CourseRepo.UpdateImageURL(courseID, ownerID, imageURL); err != nil {
		return "", err
	}
	return imageURL, nil
}
