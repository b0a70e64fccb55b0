package model

// Course difficulty levels accepted at generation time.
type CourseLevel string

const (
	Beginner     CourseLevel = "Beginner"
	Intermediate CourseLevel = "Intermediate"
	Advanced     CourseLevel = "Advanced"
)

// Course is a generated course owned by exactly one user. Chapter and
// lesson order is significant: it defines the unlock sequence.
// swagger:model Course
type Course struct {
	UUIDBase
	OwnerID     uint        `gorm:"index;not null" json:"ownerId"`
	Topic       string      `gorm:"size:255" json:"topic"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Level       CourseLevel `gorm:"size:20;default:'Beginner'" json:"level"`
	ImageURL    string      `gorm:"size:512" json:"imageUrl"`

	Chapters []Chapter `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"chapters"`
}

func (Course) TableName() string {
	return "courses"
}

type Chapter struct {
	BaseModel
	CourseID string `gorm:"index;type:varchar(36);not null" json:"-"`
	Position int    `gorm:"not null" json:"position"`
	Title    string `gorm:"size:255;not null" json:"title"`
	// Convenience mirror of the completion-chain rule, kept in sync by
	// the mutators. IsChapterUnlocked is authoritative on reads.
	Unlocked bool `gorm:"default:false" json:"unlocked"`

	Lessons []Lesson `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"lessons"`
}

func (Chapter) TableName() string {
	return "chapters"
}

type Lesson struct {
	BaseModel
	ChapterID  uint   `gorm:"index;not null" json:"-"`
	Position   int    `gorm:"not null" json:"position"`
	Title      string `gorm:"size:255;not null" json:"title"`
	Content    string `gorm:"type:longtext" json:"content"`
	XP         int    `gorm:"default:10" json:"xp"`
	Completed  bool   `gorm:"default:false" json:"completed"`
	Attempts   int    `gorm:"default:0" json:"attempts"`
	QuizScore  int    `gorm:"default:0" json:"quizScore"`
	QuizPassed bool   `gorm:"default:false" json:"quizPassed"`

	Quiz *Quiz `gorm:"serializer:json;type:json" json:"quiz,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// Quiz is stored as a JSON column on the lesson; it is replaced wholesale
// on regeneration and never updated field by field.
type Quiz struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// IsChapterUnlocked is the authoritative unlock rule: chapter 0 is always
// open, every later chapter requires the previous one to be fully
// completed. Recomputed on every read, never trusted from the mirror flag.
func (c *Course) IsChapterUnlocked(chapterIndex int) bool {
	if chapterIndex < 0 || chapterIndex >= len(c.Chapters) {
		return false
	}
	if chapterIndex == 0 {
		return true
	}
	return c.IsChapterCompleted(chapterIndex - 1)
}

// IsLessonUnlocked reports whether a lesson is reachable: its chapter
// must be unlocked and every earlier lesson in the chapter completed.
func (c *Course) IsLessonUnlocked(chapterIndex, lessonIndex int) bool {
	if !c.IsChapterUnlocked(chapterIndex) {
		return false
	}
	lessons := c.Chapters[chapterIndex].Lessons
	if lessonIndex < 0 || lessonIndex >= len(lessons) {
		return false
	}
	if lessonIndex == 0 {
		return true
	}
	return lessons[lessonIndex-1].Completed
}

// IsChapterCompleted derives chapter completion from its lessons. An
// empty chapter is never considered completed.
func (c *Course) IsChapterCompleted(chapterIndex int) bool {
	if chapterIndex < 0 || chapterIndex >= len(c.Chapters) {
		return false
	}
	lessons := c.Chapters[chapterIndex].Lessons
	if len(lessons) == 0 {
		return false
	}
	for _, l := range lessons {
		if !l.Completed {
			return false
		}
	}
	return true
}

// Lesson returns the lesson at the given position, or nil when either
// index is out of range.
func (c *Course) Lesson(chapterIndex, lessonIndex int) *Lesson {
	if chapterIndex < 0 || chapterIndex >= len(c.Chapters) {
		return nil
	}
	lessons := c.Chapters[chapterIndex].Lessons
	if lessonIndex < 0 || lessonIndex >= len(lessons) {
		return nil
	}
	return &lessons[lessonIndex]
}

// SyncUnlockMirrors realigns the persisted chapter flags with the
// completion chain after a mutation.
func (c *Course) SyncUnlockMirrors() {
	for i := range c.Chapters {
		c.Chapters[i].Unlocked = c.IsChapterUnlocked(i)
	}
}
