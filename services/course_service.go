package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type CourseInput struct {
	CourseCode string `json:"courseCode" validate:"required,max=20"`
	Name       string `json:"name" validate:"required,max=200"`
	Instructor string `json:"instructor" validate:"max=120"`
}

// CourseService groups students by course for study-buddy discovery
type CourseService struct {
	Dynamo   *DynamoService
	Profiles *UserService
	Now      func() time.Time
}

// NormalizeCourseCode uppercases and strips spaces, so "cs 101" and "CS101" are the same course
func NormalizeCourseCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

func (s *CourseService) CreateCourse(ctx context.Context, userID string, input CourseInput) (*models.Course, error) {
	code := NormalizeCourseCode(input.CourseCode)
	if code == "" {
		return nil, utils.NewValidationError("courseCode is required")
	}
	course := &models.Course{
		CourseCode: code,
		Name:       strings.TrimSpace(input.Name),
		Instructor: strings.TrimSpace(input.Instructor),
		CreatedBy:  userID,
		Members:    []string{userID},
		CreatedAt:  models.Timestamp(s.Now()),
	}
	err := s.Dynamo.PutItemWithCondition(ctx, models.CoursesTable, course, "attribute_not_exists(courseCode)", nil, nil)
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, utils.NewConflictError(fmt.Sprintf("course %s already exists", code))
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return course, nil
}

func (s *CourseService) GetCourse(ctx context.Context, code string) (*models.Course, error) {
	var course models.Course
	err := s.Dynamo.GetItem(ctx, models.CoursesTable, StringKey("courseCode", NormalizeCourseCode(code)), &course)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("course not found")
		}
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}
	return &course, nil
}

func (s *CourseService) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.scan(ctx, nil)
}

// ListMine returns the courses userID is enrolled in
func (s *CourseService) ListMine(ctx context.Context, userID string) ([]models.Course, error) {
	return s.scan(ctx, func(item map[string]types.AttributeValue) bool {
		return utils.StringSetContains(item, "members", userID)
	})
}

func (s *CourseService) scan(ctx context.Context, filter func(map[string]types.AttributeValue) bool) ([]models.Course, error) {
	var courses []models.Course
	if err := s.Dynamo.ScanWithFilter(ctx, models.CoursesTable, "", nil, nil, filter, &courses); err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CourseCode < courses[j].CourseCode })
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

func (s *CourseService) Enroll(ctx context.Context, code, userID string) (*models.Course, error) {
	return s.updateMembers(ctx, code, userID, "ADD")
}

func (s *CourseService) Unenroll(ctx context.Context, code, userID string) (*models.Course, error) {
	return s.updateMembers(ctx, code, userID, "DELETE")
}

func (s *CourseService) updateMembers(ctx context.Context, code, userID, action string) (*models.Course, error) {
	attrs, err := s.Dynamo.UpdateItem(ctx, models.CoursesTable, StringKey("courseCode", NormalizeCourseCode(code)),
		action+" members :user",
		"attribute_exists(courseCode)",
		map[string]types.AttributeValue{":user": &types.AttributeValueMemberSS{Value: []string{userID}}},
		nil,
	)
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, utils.NewNotFoundError("course not found")
		}
		return nil, fmt.Errorf("failed to update course members: %w", err)
	}
	var course models.Course
	if err := attributevalue.UnmarshalMap(attrs, &course); err != nil {
		return nil, fmt.Errorf("failed to unmarshal course: %w", err)
	}
	if course.Members == nil {
		course.Members = []string{}
	}
	return &course, nil
}

// Members returns the public profiles of a course's students
func (s *CourseService) Members(ctx context.Context, code string) ([]models.PublicProfile, error) {
	course, err := s.GetCourse(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Profiles.PublicProfiles(ctx, course.Members)
}
