package service

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"kindergarten_backend/internals/constants"
	classDTO "kindergarten_backend/internals/features/school/classes/dto"
	classModel "kindergarten_backend/internals/features/school/classes/model"
	classRepo "kindergarten_backend/internals/features/school/classes/repository"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/realtime"
)

var ErrClassNotFound = fiber.NewError(fiber.StatusNotFound, "Class not found")

type ClassService struct {
	Repo   classRepo.ClassRepository
	Events realtime.Publisher
}

func NewClassService(repo classRepo.ClassRepository, events realtime.Publisher) *ClassService {
	if events == nil {
		events = realtime.Nop{}
	}
	return &ClassService{Repo: repo, Events: events}
}

func (s *ClassService) publish(action string, id uuid.UUID) {
	s.Events.Publish(realtime.Event{Topic: constants.TopicClasses, Action: action, ID: id.String(), Public: true})
}

func internal(ctx context.Context, msg string, err error) error {
	logger.FromContext(ctx).Error(msg, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

func (s *ClassService) List(ctx context.Context) ([]classModel.ClassModel, error) {
	list, err := s.Repo.List(ctx)
	if err != nil {
		return nil, internal(ctx, "Failed to fetch classes", err)
	}
	return list, nil
}

func (s *ClassService) Get(ctx context.Context, id uuid.UUID) (*classModel.ClassModel, error) {
	m, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, ErrClassNotFound
		}
		return nil, internal(ctx, "Failed to fetch class", err)
	}
	return m, nil
}

// Create inserts the class and enrolls the listed children, moving them out
// of their previous class.
func (s *ClassService) Create(ctx context.Context, req classDTO.CreateClassRequest) (*classModel.ClassModel, error) {
	m := req.ToModel()
	if m.ClassID == uuid.Nil {
		m.ClassID = uuid.New()
	}
	err := s.Repo.Transaction(ctx, func(tx classRepo.ClassRepository) error {
		children := m.ClassChildrenIDs
		m.ClassChildrenIDs = pq.StringArray{}
		if err := tx.Create(ctx, m); err != nil {
			return err
		}
		empty := *m
		m.ClassChildrenIDs = children
		return SyncClass(ctx, tx, &empty, m)
	})
	if err != nil {
		return nil, internal(ctx, "Failed to create class", err)
	}
	s.publish(realtime.ActionCreated, m.ClassID)
	return m, nil
}

// Update applies the patch and keeps children.class_id and the other
// classes consistent, all in one transaction.
func (s *ClassService) Update(ctx context.Context, id uuid.UUID, req classDTO.UpdateClassRequest) (*classModel.ClassModel, error) {
	var out *classModel.ClassModel
	err := s.Repo.Transaction(ctx, func(tx classRepo.ClassRepository) error {
		prev, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		next := req.Apply(*prev)
		if err := SyncClass(ctx, tx, prev, &next); err != nil {
			return err
		}
		out = &next
		return nil
	})
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, ErrClassNotFound
		}
		return nil, internal(ctx, "Failed to update class", err)
	}
	s.publish(realtime.ActionUpdated, id)
	return out, nil
}

// Delete detaches every child of the class in the same transaction.
func (s *ClassService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.Transaction(ctx, func(tx classRepo.ClassRepository) error {
		if err := tx.ClearClass(ctx, id); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		if helper.IsNotFound(err) {
			return ErrClassNotFound
		}
		return internal(ctx, "Failed to delete class", err)
	}
	s.publish(realtime.ActionDeleted, id)
	return nil
}

// EnrollChild moves a child into classID (nil = no class).
func (s *ClassService) EnrollChild(ctx context.Context, childID string, classID *uuid.UUID) error {
	err := s.Repo.Transaction(ctx, func(tx classRepo.ClassRepository) error {
		if classID == nil {
			return unenroll(ctx, tx, childID)
		}
		target, err := tx.FindByID(ctx, *classID)
		if err != nil {
			return err
		}
		return enroll(ctx, tx, childID, target)
	})
	if err != nil {
		if helper.IsNotFound(err) {
			return ErrClassNotFound
		}
		return internal(ctx, "Failed to update class membership", err)
	}
	if classID != nil {
		s.publish(realtime.ActionUpdated, *classID)
	}
	return nil
}

// RemoveChild drops a deleted child from every class.
func (s *ClassService) RemoveChild(ctx context.Context, childID string) error {
	err := s.Repo.Transaction(ctx, func(tx classRepo.ClassRepository) error {
		return removeFromOtherClasses(ctx, tx, childID, uuid.Nil)
	})
	if err != nil {
		return internal(ctx, "Failed to update class membership", err)
	}
	return nil
}

func (s *ClassService) Count(ctx context.Context) (int64, error) {
	return s.Repo.Count(ctx)
}

/* ===== sync core ===== */

// SyncClass persists next and reconciles membership with prev:
//  1. children dropped from the list lose their class_id
//  2. added children leave any other class and get this class_id
//  3. the first teacher is removed from every other class
func SyncClass(ctx context.Context, tx classRepo.ClassRepository, prev, next *classModel.ClassModel) error {
	next.ClassChildrenIDs = pq.StringArray(helper.UniqueStrings(next.ClassChildrenIDs))

	current, err := tx.ChildIDsInClass(ctx, next.ClassID)
	if err != nil {
		return err
	}
	members := helper.UniqueStrings(append(append([]string{}, prev.ClassChildrenIDs...), current...))

	var removed []string
	for _, id := range members {
		if !helper.ContainsString(next.ClassChildrenIDs, id) {
			removed = append(removed, id)
		}
	}
	if err := tx.SetChildClass(ctx, removed, nil); err != nil {
		return err
	}

	for _, childID := range next.ClassChildrenIDs {
		if err := removeFromOtherClasses(ctx, tx, childID, next.ClassID); err != nil {
			return err
		}
	}
	cid := next.ClassID
	if err := tx.SetChildClass(ctx, next.ClassChildrenIDs, &cid); err != nil {
		return err
	}

	if len(next.ClassTeacherIDs) > 0 {
		if err := removeTeacherFromOtherClasses(ctx, tx, next.ClassTeacherIDs[0], next.ClassID); err != nil {
			return err
		}
	}
	return tx.Save(ctx, next)
}

func enroll(ctx context.Context, tx classRepo.ClassRepository, childID string, target *classModel.ClassModel) error {
	if err := removeFromOtherClasses(ctx, tx, childID, target.ClassID); err != nil {
		return err
	}
	if !helper.ContainsString(target.ClassChildrenIDs, childID) {
		target.ClassChildrenIDs = append(target.ClassChildrenIDs, childID)
		if err := tx.Save(ctx, target); err != nil {
			return err
		}
	}
	cid := target.ClassID
	return tx.SetChildClass(ctx, []string{childID}, &cid)
}

func unenroll(ctx context.Context, tx classRepo.ClassRepository, childID string) error {
	if err := removeFromOtherClasses(ctx, tx, childID, uuid.Nil); err != nil {
		return err
	}
	return tx.SetChildClass(ctx, []string{childID}, nil)
}

func removeFromOtherClasses(ctx context.Context, tx classRepo.ClassRepository, childID string, keep uuid.UUID) error {
	others, err := tx.FindByChild(ctx, childID)
	if err != nil {
		return err
	}
	for i := range others {
		if others[i].ClassID == keep {
			continue
		}
		others[i].ClassChildrenIDs = pq.StringArray(helper.RemoveString(others[i].ClassChildrenIDs, childID))
		if err := tx.Save(ctx, &others[i]); err != nil {
			return err
		}
	}
	return nil
}

func removeTeacherFromOtherClasses(ctx context.Context, tx classRepo.ClassRepository, teacherID string, keep uuid.UUID) error {
	others, err := tx.FindByTeacher(ctx, teacherID)
	if err != nil {
		return err
	}
	for i := range others {
		if others[i].ClassID == keep {
			continue
		}
		others[i].ClassTeacherIDs = pq.StringArray(helper.RemoveString(others[i].ClassTeacherIDs, teacherID))
		if err := tx.Save(ctx, &others[i]); err != nil {
			return err
		}
	}
	return nil
}

// IsClassNotFound reports the sentinel returned by Get/Update/Delete.
func IsClassNotFound(err error) bool {
	return errors.Is(err, ErrClassNotFound)
}
