package service

import (
	"context"
	"errors"
	"examhub_backend/internal/model"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// Actor 当前操作者，由认证中间件解析后显式传入
type Actor struct {
	UserID string
	Role   model.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.Admin
}

// ExamInput 创建/更新试卷请求
type ExamInput struct {
	Title            string              `json:"title" validate:"notblank,max=255"`
	Description      string              `json:"description"`
	CourseID         string              `json:"courseId" validate:"notblank"`
	TimeLimit        int                 `json:"timeLimit" validate:"gte=0"`
	PassingScore     int                 `json:"passingScore" validate:"gte=0,lte=100"`
	ShuffleQuestions bool                `json:"shuffleQuestions"`
	Status           model.ExamStatus    `json:"status" validate:"omitempty,oneof=draft published archived"`
	StartDate        *time.Time          `json:"startDate"`
	EndDate          *time.Time          `json:"endDate"`
	UseQuestionPool  bool                `json:"useQuestionPool"`
	QuestionPool     *model.QuestionPool `json:"questionPool"`
	QuestionIDs      []string            `json:"questionIds" validate:"dive,notblank"`
}

func (in ExamInput) applyTo(e *model.Exam) error {
	e.Title = in.Title
	e.Description = in.Description
	e.CourseID = in.CourseID
	e.TimeLimit = in.TimeLimit
	e.PassingScore = in.PassingScore
	e.ShuffleQuestions = in.ShuffleQuestions
	e.StartDate = in.StartDate
	e.EndDate = in.EndDate
	if in.Status != "" {
		e.Status = in.Status
	}
	if e.Status == "" {
		e.Status = model.ExamDraft
	}
	// 两种出题方式互斥
	e.UseQuestionPool = in.UseQuestionPool
	if in.UseQuestionPool {
		return e.SetPool(in.QuestionPool)
	}
	return e.SetPool(nil)
}

// ExamDetail 试卷及其有序题目
type ExamDetail struct {
	*model.Exam
	Questions []model.ExamQuestion `json:"questions"`
}

// ExamService 试卷生命周期管理，每次可能影响学员可见状态的变更后都会重新同步分配
type ExamService struct {
	Exams     ExamStore
	Questions QuestionStore
	Sync      *AssignmentSynchronizer
}

func NewExamService(exams ExamStore, questions QuestionStore, sync *AssignmentSynchronizer) *ExamService {
	return &ExamService{Exams: exams, Questions: questions, Sync: sync}
}

// Create 返回新试卷 ID；题目关联或同步失败不会回滚已创建的试卷
func (s *ExamService) Create(ctx context.Context, actor Actor, in ExamInput) (string, Result) {
	if err := validateInput(in); err != nil {
		return "", Fail(err.Error(), err)
	}

	exam := &model.Exam{InstructorID: actor.UserID}
	if err := in.applyTo(exam); err != nil {
		return "", Fail("Invalid question pool", err)
	}

	id, err := s.Exams.SaveExam(ctx, exam)
	if err != nil {
		logger.Log.Error("failed to create exam", zap.String("course_id", in.CourseID), zap.Error(err))
		return "", Fail("Failed to create exam", err)
	}
	exam.ID = id

	var linkErr error
	if !exam.UseQuestionPool && len(in.QuestionIDs) > 0 {
		if linkErr = s.Exams.ReplaceExamQuestions(ctx, id, uniqueIDs(in.QuestionIDs)); linkErr != nil {
			logger.Log.Error("failed to add exam questions", zap.String("exam_id", id), zap.Error(linkErr))
		}
	}

	sync := s.Sync.SyncExam(ctx, exam)

	switch {
	case linkErr != nil && sync.Outcome != OutcomeSuccess:
		return id, Warn("Exam created but there was an issue adding questions; "+sync.Message, linkErr)
	case linkErr != nil:
		return id, Warn("Exam created but there was an issue adding questions", linkErr)
	case sync.Outcome != OutcomeSuccess:
		return id, Warn("Exam created but: "+sync.Message, sync.Err)
	}
	return id, OK("Exam created successfully")
}

// Update 题目关联整体替换，使用题目池时按科目抽题落地
func (s *ExamService) Update(ctx context.Context, actor Actor, id string, in ExamInput) Result {
	if err := validateInput(in); err != nil {
		return Fail(err.Error(), err)
	}

	exam, res := s.loadOwned(ctx, actor, id)
	if exam == nil {
		return res
	}
	// 分配记录按课程报名同步，换课程会留下原课程学员的记录
	if in.CourseID != exam.CourseID {
		err := &ValidationError{Fields: map[string]string{"courseId": "courseId cannot be changed after the exam is created"}}
		return Fail("An exam cannot be moved to another course", err)
	}
	if err := in.applyTo(exam); err != nil {
		return Fail("Invalid question pool", err)
	}

	if _, err := s.Exams.SaveExam(ctx, exam); err != nil {
		logger.Log.Error("failed to update exam", zap.String("exam_id", id), zap.Error(err))
		return Fail("Failed to update exam", err)
	}

	questionIDs := uniqueIDs(in.QuestionIDs)
	var linkErr error
	if exam.UseQuestionPool {
		var pool *model.QuestionPool
		if pool, linkErr = exam.Pool(); linkErr == nil {
			questionIDs, linkErr = s.materializePool(ctx, pool)
		}
	}
	if linkErr == nil {
		linkErr = s.Exams.ReplaceExamQuestions(ctx, id, questionIDs)
	}
	if linkErr != nil {
		logger.Log.Error("failed to replace exam questions", zap.String("exam_id", id), zap.Error(linkErr))
	}

	sync := s.Sync.SyncExam(ctx, exam)

	switch {
	case linkErr != nil && sync.Outcome != OutcomeSuccess:
		return Warn("Exam updated but there was an issue saving questions; "+sync.Message, linkErr)
	case linkErr != nil:
		return Warn("Exam updated but there was an issue saving questions", linkErr)
	case sync.Outcome != OutcomeSuccess:
		return Warn("Exam updated but: "+sync.Message, sync.Err)
	}
	return OK("Exam updated successfully")
}

// Delete 题目关联与分配记录由存储层级联删除
func (s *ExamService) Delete(ctx context.Context, actor Actor, id string) Result {
	exam, res := s.loadOwned(ctx, actor, id)
	if exam == nil {
		return res
	}
	if err := s.Exams.DeleteExam(ctx, id); err != nil {
		logger.Log.Error("failed to delete exam", zap.String("exam_id", id), zap.Error(err))
		return Fail("Failed to delete exam", err)
	}
	return OK("Exam deleted successfully")
}

var statusMessages = map[model.ExamStatus]string{
	model.ExamDraft:     "Exam moved back to draft",
	model.ExamPublished: "Exam published successfully",
	model.ExamArchived:  "Exam archived successfully",
}

// SetStatus 允许任意状态间切换，状态未变化时同样重新同步（开始时间可能已过）
func (s *ExamService) SetStatus(ctx context.Context, actor Actor, id string, status model.ExamStatus) Result {
	if !status.Valid() {
		return Fail("Invalid exam status", util.ErrInvalidStatus)
	}
	exam, res := s.loadOwned(ctx, actor, id)
	if exam == nil {
		return res
	}
	if err := s.Exams.UpdateExamStatus(ctx, id, status); err != nil {
		logger.Log.Error("failed to update exam status", zap.String("exam_id", id), zap.String("status", string(status)), zap.Error(err))
		return Fail("Failed to update exam status", err)
	}
	exam.Status = status

	sync := s.Sync.SyncExam(ctx, exam)
	if sync.Outcome != OutcomeSuccess {
		return Warn("Exam status updated but: "+sync.Message, sync.Err)
	}
	return OK(statusMessages[status])
}

// Get 仅创建者或管理员可查看题目明细
func (s *ExamService) Get(ctx context.Context, actor Actor, id string) (*ExamDetail, error) {
	exam, err := s.Exams.GetExam(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	if !canManage(actor, exam) {
		return nil, util.ErrPermissionDenied
	}
	questions, err := s.Exams.ListExamQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ExamDetail{Exam: exam, Questions: questions}, nil
}

// ListByCourse 管理员看到课程下全部试卷，教师只看到自己创建的
func (s *ExamService) ListByCourse(ctx context.Context, actor Actor, courseID string) ([]model.Exam, error) {
	exams, err := s.Exams.ListExamsByCourse(ctx, courseID)
	if err != nil || actor.IsAdmin() {
		return exams, err
	}
	owned := exams[:0]
	for _, e := range exams {
		if canManage(actor, &e) {
			owned = append(owned, e)
		}
	}
	return owned, nil
}

// loadOwned 加载试卷并校验操作者为创建者或管理员，失败时返回 nil 与对应结果
func (s *ExamService) loadOwned(ctx context.Context, actor Actor, id string) (*model.Exam, Result) {
	exam, err := s.Exams.GetExam(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, Fail(util.ErrExamNotFound.Error(), util.ErrExamNotFound)
		}
		logger.Log.Error("failed to load exam", zap.String("exam_id", id), zap.Error(err))
		return nil, Fail("Failed to load exam", err)
	}
	if !canManage(actor, exam) {
		return nil, Fail("You do not have permission to modify this exam", util.ErrPermissionDenied)
	}
	return exam, Result{}
}

func canManage(actor Actor, exam *model.Exam) bool {
	return actor.IsAdmin() || (actor.UserID != "" && exam.InstructorID == actor.UserID)
}

// materializePool 按科目抽取题目（每科至多 Count 道），去重后截取到目标题数
func (s *ExamService) materializePool(ctx context.Context, pool *model.QuestionPool) ([]string, error) {
	if pool == nil {
		return nil, nil
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, subject := range pool.Subjects {
		questions, err := s.Questions.ListQuestionsBySubjects(ctx, []string{subject.SubjectID}, subject.Count)
		if err != nil {
			return nil, err
		}
		for _, q := range questions {
			if _, ok := seen[q.ID]; ok {
				continue
			}
			seen[q.ID] = struct{}{}
			ids = append(ids, q.ID)
		}
	}
	if target := pool.Target(); target > 0 && len(ids) > target {
		ids = ids[:target]
	}
	return ids, nil
}
