package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/app/repositories"
	"github.com/yigit/alumnet/internal/pkg/contentpolicy"
	"github.com/yigit/alumnet/internal/pkg/dispatch"
	"github.com/yigit/alumnet/internal/pkg/helpers"
)

// testNow is the pinned clock of every service test
var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func ptr[T any](v T) *T { return &v }

// --- users & admins ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) FindByNamePrefix(ctx context.Context, prefix string) (*models.User, error) {
	args := m.Called(ctx, prefix)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) ApplyBan(ctx context.Context, userID int64, status models.BanStatus, reason *string, expiresAt *time.Time, adminID int64) (*models.BanRecord, error) {
	args := m.Called(ctx, userID, status, reason, expiresAt, adminID)
	r, _ := args.Get(0).(*models.BanRecord)
	return r, args.Error(1)
}

func (m *mockUserStore) ClearBan(ctx context.Context, userID int64) (*models.BanRecord, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(*models.BanRecord)
	return r, args.Error(1)
}

type mockAdminStore struct{ mock.Mock }

func (m *mockAdminStore) GetAdminByID(ctx context.Context, id int64) (*models.Admin, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*models.Admin)
	return a, args.Error(1)
}

// --- posts & comments ---

type mockPostStore struct{ mock.Mock }

func (m *mockPostStore) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostStore) GetByID(ctx context.Context, id int64, viewer models.ActorRef) (*models.Post, error) {
	args := m.Called(ctx, id, viewer)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPostStore) List(ctx context.Context, filter models.PostFilter, viewer models.ActorRef) ([]*models.Post, int64, error) {
	args := m.Called(ctx, filter, viewer)
	p, _ := args.Get(0).([]*models.Post)
	return p, args.Get(1).(int64), args.Error(2)
}

func (m *mockPostStore) ListSaved(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Post, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	p, _ := args.Get(0).([]*models.Post)
	return p, args.Get(1).(int64), args.Error(2)
}

func (m *mockPostStore) UpdateContent(ctx context.Context, id int64, content string) error {
	return m.Called(ctx, id, content).Error(0)
}

func (m *mockPostStore) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPostStore) Vote(ctx context.Context, postID int64, voter models.ActorRef, dir models.VoteDirection) (*models.VoteOutcome, error) {
	args := m.Called(ctx, postID, voter, dir)
	o, _ := args.Get(0).(*models.VoteOutcome)
	return o, args.Error(1)
}

func (m *mockPostStore) ToggleSave(ctx context.Context, postID, userID int64) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPostStore) TogglePin(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPostStore) RecountComments(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type mockCommentStore struct{ mock.Mock }

func (m *mockCommentStore) CreateWithCount(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *mockCommentStore) GetByID(ctx context.Context, id int64, viewer models.ActorRef) (*models.Comment, error) {
	args := m.Called(ctx, id, viewer)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

func (m *mockCommentStore) ListTopLevel(ctx context.Context, postID int64, q models.CommentQuery, viewer models.ActorRef) ([]*models.Comment, int64, error) {
	args := m.Called(ctx, postID, q, viewer)
	c, _ := args.Get(0).([]*models.Comment)
	return c, args.Get(1).(int64), args.Error(2)
}

func (m *mockCommentStore) ListReplies(ctx context.Context, parentID int64, offset uint64, limit int, viewer models.ActorRef) ([]*models.Comment, int64, error) {
	args := m.Called(ctx, parentID, offset, limit, viewer)
	c, _ := args.Get(0).([]*models.Comment)
	return c, args.Get(1).(int64), args.Error(2)
}

func (m *mockCommentStore) ListByPost(ctx context.Context, postID int64, viewer models.ActorRef) ([]*models.Comment, error) {
	args := m.Called(ctx, postID, viewer)
	c, _ := args.Get(0).([]*models.Comment)
	return c, args.Error(1)
}

func (m *mockCommentStore) UpdateContent(ctx context.Context, id int64, content string) error {
	return m.Called(ctx, id, content).Error(0)
}

func (m *mockCommentStore) SoftDelete(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *mockCommentStore) Vote(ctx context.Context, commentID int64, voter models.ActorRef, dir models.VoteDirection) (*models.VoteOutcome, error) {
	args := m.Called(ctx, commentID, voter, dir)
	o, _ := args.Get(0).(*models.VoteOutcome)
	return o, args.Error(1)
}

// --- moderation ---

type mockReportStore struct{ mock.Mock }

func (m *mockReportStore) CreateWithEscalation(ctx context.Context, report *models.Report, authorID int64, policy models.AutoBanPolicy, now time.Time) (*models.ReportOutcome, error) {
	args := m.Called(ctx, report, authorID, policy, now)
	o, _ := args.Get(0).(*models.ReportOutcome)
	return o, args.Error(1)
}

func (m *mockReportStore) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Report)
	return r, args.Error(1)
}

func (m *mockReportStore) List(ctx context.Context, status models.ReportStatus, offset uint64, limit int) ([]*models.Report, int64, error) {
	args := m.Called(ctx, status, offset, limit)
	r, _ := args.Get(0).([]*models.Report)
	return r, args.Get(1).(int64), args.Error(2)
}

func (m *mockReportStore) ReportedUsers(ctx context.Context, offset uint64, limit, sampleSize int) ([]*models.ReportedUser, int64, error) {
	args := m.Called(ctx, offset, limit, sampleSize)
	r, _ := args.Get(0).([]*models.ReportedUser)
	return r, args.Get(1).(int64), args.Error(2)
}

func (m *mockReportStore) Dismiss(ctx context.Context, id, adminID int64) (*models.Report, bool, error) {
	args := m.Called(ctx, id, adminID)
	r, _ := args.Get(0).(*models.Report)
	return r, args.Bool(1), args.Error(2)
}

// --- connections & messaging ---

type mockConnectionStore struct{ mock.Mock }

func (m *mockConnectionStore) FindBetween(ctx context.Context, a, b int64) (*models.Connection, error) {
	args := m.Called(ctx, a, b)
	c, _ := args.Get(0).(*models.Connection)
	return c, args.Error(1)
}

func (m *mockConnectionStore) Create(ctx context.Context, conn *models.Connection) error {
	return m.Called(ctx, conn).Error(0)
}

func (m *mockConnectionStore) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Connection)
	return c, args.Error(1)
}

func (m *mockConnectionStore) Respond(ctx context.Context, id int64, status models.ConnectionStatus) (*models.Connection, error) {
	args := m.Called(ctx, id, status)
	c, _ := args.Get(0).(*models.Connection)
	return c, args.Error(1)
}

func (m *mockConnectionStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockConnectionStore) List(ctx context.Context, f repositories.ConnectionFilter) ([]*models.Connection, int64, error) {
	args := m.Called(ctx, f)
	c, _ := args.Get(0).([]*models.Connection)
	return c, args.Get(1).(int64), args.Error(2)
}

type mockConversationStore struct{ mock.Mock }

func (m *mockConversationStore) GetOrCreate(ctx context.Context, a, b models.ActorRef) (*models.Conversation, error) {
	args := m.Called(ctx, a, b)
	c, _ := args.Get(0).(*models.Conversation)
	return c, args.Error(1)
}

func (m *mockConversationStore) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Conversation)
	return c, args.Error(1)
}

func (m *mockConversationStore) ListForActor(ctx context.Context, ref models.ActorRef, offset uint64, limit int) ([]*models.ConversationSummary, int64, error) {
	args := m.Called(ctx, ref, offset, limit)
	c, _ := args.Get(0).([]*models.ConversationSummary)
	return c, args.Get(1).(int64), args.Error(2)
}

type mockMessageStore struct{ mock.Mock }

func (m *mockMessageStore) Create(ctx context.Context, msg *models.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessageStore) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	args := m.Called(ctx, id)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *mockMessageStore) ListByConversation(ctx context.Context, conversationID int64, offset uint64, limit int) ([]*models.Message, int64, error) {
	args := m.Called(ctx, conversationID, offset, limit)
	msgs, _ := args.Get(0).([]*models.Message)
	return msgs, args.Get(1).(int64), args.Error(2)
}

func (m *mockMessageStore) MarkRead(ctx context.Context, conversationID int64, reader models.ActorRef) (int64, error) {
	args := m.Called(ctx, conversationID, reader)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageStore) UnreadCount(ctx context.Context, ref models.ActorRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageStore) Delete(ctx context.Context, msg *models.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockNotificationStore) List(ctx context.Context, recipient models.ActorRef, unreadOnly bool, offset uint64, limit int) ([]*models.Notification, int64, error) {
	args := m.Called(ctx, recipient, unreadOnly, offset, limit)
	n, _ := args.Get(0).([]*models.Notification)
	return n, args.Get(1).(int64), args.Error(2)
}

func (m *mockNotificationStore) UnreadCount(ctx context.Context, recipient models.ActorRef) (int64, error) {
	args := m.Called(ctx, recipient)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, id int64, recipient models.ActorRef) error {
	return m.Called(ctx, id, recipient).Error(0)
}

func (m *mockNotificationStore) MarkAllRead(ctx context.Context, recipient models.ActorRef) (int64, error) {
	args := m.Called(ctx, recipient)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationStore) Delete(ctx context.Context, id int64, recipient models.ActorRef) error {
	return m.Called(ctx, id, recipient).Error(0)
}

// --- collaborators ---

// recordingNotifier captures what services ask the fan-out to deliver
type recordingNotifier struct {
	NotificationService
	mu       sync.Mutex
	notified []NotifyInput
	mentions []MentionInput
}

func (r *recordingNotifier) Notify(_ context.Context, in NotifyInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, in)
}

func (r *recordingNotifier) NotifyMentions(_ context.Context, in MentionInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mentions = append(r.mentions, in)
}

// stubQueue records enqueued jobs or fails every enqueue with err
type stubQueue struct {
	mu   sync.Mutex
	jobs []dispatch.Job
	err  error
}

func (q *stubQueue) Enqueue(_ context.Context, job dispatch.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *stubQueue) Start(dispatch.Handler) {}

func (q *stubQueue) Close(context.Context) error { return nil }

// blockList flags any text containing one of its words
type blockList []string

func (b blockList) Classify(text string) contentpolicy.Classification {
	for _, w := range b {
		if strings.Contains(strings.ToLower(text), w) {
			return contentpolicy.Classification{Blocked: true, Matches: []string{w}}
		}
	}
	return contentpolicy.Classification{}
}

func member(id int64, name string) *models.User {
	return &models.User{ID: id, Name: name, Role: models.RoleMember, BanStatus: models.BanActive}
}

func staff(id int64, name string) *models.Admin {
	return &models.Admin{ID: id, Name: name}
}

func pageOf(number, limit int) helpers.Page {
	return helpers.Page{Number: number, Limit: limit}
}
