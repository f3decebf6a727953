package services

import (
	"errors"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// CommentService trusts the role handed down by the request context for
// deletes instead of re-deriving it from the comment's workspace. That is the
// behavior the rest of the system was built against; strict mode closes the
// gap by resolving membership through the comment's task chain itself.
type CommentService struct {
	conn    *gorm.DB
	members *MembershipResolver
	strict  bool
}

func NewCommentService(conn *gorm.DB, members *MembershipResolver, strict bool) *CommentService {
	return &CommentService{conn: conn, members: members, strict: strict}
}

func (s *CommentService) Create(taskID, userID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Comment content is required")
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if s.strict {
		if _, err := s.members.RequireMember(userID, task.Project.WorkspaceID); err != nil {
			return nil, err
		}
	}

	comment := models.Comment{
		TaskID:    taskID,
		Content:   content,
		CreatedBy: userID,
	}

	if err := s.conn.Create(&comment).Error; err != nil {
		return nil, err
	}

	return &comment, nil
}

func (s *CommentService) List(taskID uint) ([]models.Comment, error) {
	var comments []models.Comment

	err := s.conn.Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	return comments, nil
}

// Update is author-only; elevated roles get no override here.
func (s *CommentService) Update(commentID, userID uint, content string) (*models.Comment, error) {
	comment, err := s.find(commentID)
	if err != nil {
		return nil, err
	}

	if comment.CreatedBy != userID {
		return nil, apperrors.Authorization("Only the comment author can edit this comment")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Comment content is required")
	}

	comment.Content = content
	if err := s.conn.Save(comment).Error; err != nil {
		return nil, err
	}

	return comment, nil
}

// Delete allows the author, or a caller holding ADMIN/OWNER. callerRole comes
// from the request context; in strict mode it is ignored and re-derived from
// the comment's actual workspace.
func (s *CommentService) Delete(commentID, userID uint, callerRole string) error {
	comment, err := s.find(commentID)
	if err != nil {
		return err
	}

	role := callerRole
	if s.strict {
		task, err := s.findTask(comment.TaskID)
		if err != nil {
			return err
		}

		member, err := s.members.Resolve(userID, task.Project.WorkspaceID)
		if err != nil {
			return err
		}

		role = ""
		if member != nil {
			role = member.Role
		}
	}

	elevated := role == models.RoleOwner || role == models.RoleAdmin
	if comment.CreatedBy != userID && !elevated {
		return apperrors.Authorization("Only the comment author or a workspace admin can delete this comment")
	}

	return s.conn.Delete(comment).Error
}

func (s *CommentService) find(commentID uint) (*models.Comment, error) {
	var comment models.Comment

	err := s.conn.First(&comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Comment not found")
		}
		return nil, err
	}

	return &comment, nil
}

func (s *CommentService) findTask(taskID uint) (*models.Task, error) {
	var task models.Task

	err := s.conn.Preload("Project").First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Task not found")
		}
		return nil, err
	}

	return &task, nil
}
