package controller

import (
	"errors"
	"io"

	"learnsphere_backend/internal/model"
	"learnsphere_backend/internal/service"
	"learnsphere_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// swagger:model GenerateCourseRequest
type GenerateCourseRequest struct {
	Topic string `json:"topic" binding:"required"`
	Level string `json:"level" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
}

// Generate godoc
// @Summary Generate a course
// @Description Builds a full course on the given topic with AI-generated chapters, lessons and quizzes
// @Tags courses
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body GenerateCourseRequest true "Topic and difficulty"
// @Success 201 {object} util.Response{data=service.CourseView} "Created"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 500 {object} util.Response "Generation failed"
// @Router /api/courses [post]
func (c *CourseController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	level := model.CourseLevel(req.Level)
	if level == "" {
		level = model.Beginner
	}

	course, err := c.CourseService.Generate(ctx.Request.Context(), claims.UserID, req.Topic, level)
	if err != nil {
		if errors.Is(err, util.ErrAIUnavailable) || errors.Is(err, util.ErrAIMalformedOutput) {
			util.Error(ctx, 500, "Failed to generate course. Please try again.")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	view, err := c.CourseService.Get(course.ID, claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, view)
}

// List godoc
// @Summary List courses
// @Description Returns the authenticated user's courses, newest first
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.CourseView} "Success"
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	views, err := c.CourseService.List(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, views)
}

// Get godoc
// @Summary Get a course
// @Description Returns one course with computed unlock state
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseView} "Success"
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.CourseService.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "Course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}

// Delete godoc
// @Summary Delete a course
// @Description Removes a course and all of its chapters and lessons
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.CourseService.Delete(ctx.Param("id"), claims.UserID); err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "Course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"deleted": true})
}

// UploadImage godoc
// @Summary Upload a course cover image
// @Description Stores a custom cover image and points the course at it
// @Tags courses
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Param   image formData file true "Image file"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/courses/{id}/image [post]
func (c *CourseController) UploadImage(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	contentType, err := util.DetectMimeType(file, []string{"image/"})
	if err != nil {
		util.BadRequest(ctx, "uploaded file must be an image")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	imageURL, err := c.CourseService.UploadImage(ctx.Request.Context(), ctx.Param("id"), claims.UserID,
		fileHeader.Filename, file, fileHeader.Size, contentType)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "Course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"imageUrl": imageURL})
}
