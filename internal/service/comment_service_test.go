package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nudduck.com/nudduck/internal/dto"
	"nudduck.com/nudduck/internal/model"
	"nudduck.com/nudduck/internal/repository"
	"nudduck.com/nudduck/internal/service"
	"nudduck.com/nudduck/pkg/apperror"
)

type fakeCommentRepo struct {
	mu            sync.Mutex
	comments      map[uuid.UUID]*model.Comment
	order         []uuid.UUID
	notifications []*model.Notification
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[uuid.UUID]*model.Comment)}
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	return r.CreateWithNotification(ctx, comment, nil)
}

func (r *fakeCommentRepo) CreateWithNotification(ctx context.Context, comment *model.Comment, notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	comment.CreatedAt = time.Now()
	stored := *comment
	r.comments[comment.ID] = &stored
	r.order = append(r.order, comment.ID)

	if notification != nil {
		notification.CommentID = &comment.ID
		r.notifications = append(r.notifications, notification)
	}
	return nil
}

func (r *fakeCommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment, ok := r.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *comment
	return &copied, nil
}

func (r *fakeCommentRepo) FindTopLevelByPostID(ctx context.Context, postID uuid.UUID, offset, limit int) ([]repository.CommentWithReplyCount, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	replyCounts := make(map[uuid.UUID]int64)
	for _, c := range r.comments {
		if c.ParentID != nil {
			replyCounts[*c.ParentID]++
		}
	}

	var rows []repository.CommentWithReplyCount
	for _, id := range r.order {
		c, ok := r.comments[id]
		if !ok || c.PostID != postID || c.ParentID != nil {
			continue
		}
		rows = append(rows, repository.CommentWithReplyCount{
			Comment:    *c,
			ReplyCount: replyCounts[c.ID],
		})
	}

	total := int64(len(rows))
	if offset >= len(rows) {
		return []repository.CommentWithReplyCount{}, total, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], total, nil
}

func (r *fakeCommentRepo) FindRepliesByParentID(ctx context.Context, parentID uuid.UUID, offset, limit int) ([]*model.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var replies []*model.Comment
	for _, id := range r.order {
		c, ok := r.comments[id]
		if !ok || c.ParentID == nil || *c.ParentID != parentID {
			continue
		}
		copied := *c
		replies = append(replies, &copied)
	}

	total := int64(len(replies))
	if offset >= len(replies) {
		return []*model.Comment{}, total, nil
	}
	end := offset + limit
	if end > len(replies) {
		end = len(replies)
	}
	return replies[offset:end], total, nil
}

func (r *fakeCommentRepo) Update(ctx context.Context, comment *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[comment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *comment
	r.comments[comment.ID] = &stored
	return nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.comments, id)
	// Replies cascade with the parent
	for cid, c := range r.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(r.comments, cid)
		}
	}
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

type commentFixture struct {
	svc         service.CommentService
	commentRepo *fakeCommentRepo
	postRepo    *fakePostRepo
	userRepo    *fakeUserRepo
}

func newCommentFixture() *commentFixture {
	f := &commentFixture{
		commentRepo: newFakeCommentRepo(),
		postRepo:    newFakePostRepo(),
		userRepo:    newFakeUserRepo(),
	}
	f.svc = service.NewCommentService(f.commentRepo, f.postRepo, f.userRepo, nil, nil, service.RateLimits{})
	return f
}

func (f *commentFixture) seedUser(t *testing.T, nickname string) uuid.UUID {
	t.Helper()
	user := &model.User{Email: nickname + "@example.com", Nickname: nickname}
	if err := f.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

func (f *commentFixture) seedComment(t *testing.T, postID, userID uuid.UUID, content string) *model.Comment {
	t.Helper()
	comment := &model.Comment{PostID: postID, UserID: userID, Content: content}
	if err := f.commentRepo.Create(context.Background(), comment); err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return comment
}

func TestCreateComment_PostNotFound(t *testing.T) {
	f := newCommentFixture()

	_, err := f.svc.CreateComment(context.Background(), uuid.New(), uuid.New(), dto.CreateCommentRequest{Content: "hi"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateComment_NotifiesPostAuthor(t *testing.T) {
	f := newCommentFixture()
	author := f.seedUser(t, "author")
	commenter := f.seedUser(t, "commenter")
	post := seedPost(t, f.postRepo, author)

	resp, err := f.svc.CreateComment(context.Background(), post.ID, commenter, dto.CreateCommentRequest{Content: "nice post"})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if resp.PostID != post.ID || resp.ParentID != nil {
		t.Errorf("unexpected comment: %+v", resp)
	}
	if resp.Author.Nickname != "commenter" {
		t.Errorf("author nickname = %q, want commenter", resp.Author.Nickname)
	}

	if len(f.commentRepo.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.commentRepo.notifications))
	}
	n := f.commentRepo.notifications[0]
	if n.UserID != author || n.ActorID != commenter || n.Type != "comment_post" {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestCreateComment_SelfCommentSkipsNotification(t *testing.T) {
	f := newCommentFixture()
	author := f.seedUser(t, "author")
	post := seedPost(t, f.postRepo, author)

	if _, err := f.svc.CreateComment(context.Background(), post.ID, author, dto.CreateCommentRequest{Content: "bump"}); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if len(f.commentRepo.notifications) != 0 {
		t.Errorf("notifications = %d, want 0", len(f.commentRepo.notifications))
	}
}

func TestCreateReply_DerivesPostFromParent(t *testing.T) {
	f := newCommentFixture()
	author := f.seedUser(t, "author")
	replier := f.seedUser(t, "replier")
	post := seedPost(t, f.postRepo, author)
	parent := f.seedComment(t, post.ID, author, "top level")

	resp, err := f.svc.CreateReply(context.Background(), parent.ID, replier, dto.CreateCommentRequest{Content: "a reply"})
	if err != nil {
		t.Fatalf("CreateReply: %v", err)
	}

	if resp.PostID != post.ID {
		t.Errorf("reply post = %v, want parent's post %v", resp.PostID, post.ID)
	}
	if resp.ParentID == nil || *resp.ParentID != parent.ID {
		t.Errorf("reply parent = %v, want %v", resp.ParentID, parent.ID)
	}
}

func TestCreateReply_ToReplyRejected(t *testing.T) {
	f := newCommentFixture()
	author := f.seedUser(t, "author")
	post := seedPost(t, f.postRepo, author)
	parent := f.seedComment(t, post.ID, author, "top level")

	reply := &model.Comment{PostID: post.ID, ParentID: &parent.ID, UserID: author, Content: "first reply"}
	if err := f.commentRepo.Create(context.Background(), reply); err != nil {
		t.Fatalf("seed reply: %v", err)
	}

	_, err := f.svc.CreateReply(context.Background(), reply.ID, author, dto.CreateCommentRequest{Content: "too deep"})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestCreateReply_ParentNotFound(t *testing.T) {
	f := newCommentFixture()

	_, err := f.svc.CreateReply(context.Background(), uuid.New(), uuid.New(), dto.CreateCommentRequest{Content: "hi"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateComment_Forbidden(t *testing.T) {
	f := newCommentFixture()
	author := f.seedUser(t, "author")
	post := seedPost(t, f.postRepo, author)
	comment := f.seedComment(t, post.ID, author, "original")

	_, err := f.svc.UpdateComment(context.Background(), comment.ID, uuid.New(), dto.UpdateCommentRequest{Content: "hijacked"})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	stored, _ := f.commentRepo.FindByID(context.Background(), comment.ID)
	if stored.Content != "original" {
		t.Errorf("content changed on forbidden update: %q", stored.Content)
	}
}

func TestDeleteComment(t *testing.T) {
	f := newCommentFixture()
	author := f.seedUser(t, "author")
	post := seedPost(t, f.postRepo, author)
	comment := f.seedComment(t, post.ID, author, "bye")

	if err := f.svc.DeleteComment(context.Background(), comment.ID, uuid.New()); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("non-owner delete err = %v, want ErrForbidden", err)
	}

	if err := f.svc.DeleteComment(context.Background(), comment.ID, author); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	if err := f.svc.DeleteComment(context.Background(), comment.ID, author); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("repeat delete err = %v, want ErrNotFound", err)
	}
}

func TestGetCommentsWithReplies(t *testing.T) {
	f := newCommentFixture()
	author := f.seedUser(t, "author")
	post := seedPost(t, f.postRepo, author)

	first := f.seedComment(t, post.ID, author, "first")
	second := f.seedComment(t, post.ID, author, "second")
	for i := 0; i < 3; i++ {
		reply := &model.Comment{PostID: post.ID, ParentID: &first.ID, UserID: author, Content: "reply"}
		if err := f.commentRepo.Create(context.Background(), reply); err != nil {
			t.Fatalf("seed reply: %v", err)
		}
	}

	resp, err := f.svc.GetCommentsWithReplies(context.Background(), post.ID, dto.PaginationQuery{})
	if err != nil {
		t.Fatalf("GetCommentsWithReplies: %v", err)
	}

	// Replies never appear in the top-level listing
	if resp.Total != 2 || len(resp.Comments) != 2 {
		t.Fatalf("got %d comments (total %d), want 2", len(resp.Comments), resp.Total)
	}
	if resp.Comments[0].ID != first.ID || resp.Comments[0].ReplyCount != 3 {
		t.Errorf("first comment: id=%v replyCount=%d, want id=%v replyCount=3",
			resp.Comments[0].ID, resp.Comments[0].ReplyCount, first.ID)
	}
	if resp.Comments[1].ID != second.ID || resp.Comments[1].ReplyCount != 0 {
		t.Errorf("second comment: id=%v replyCount=%d, want id=%v replyCount=0",
			resp.Comments[1].ID, resp.Comments[1].ReplyCount, second.ID)
	}
}

func TestGetRepliesByCommentID(t *testing.T) {
	f := newCommentFixture()
	author := f.seedUser(t, "author")
	post := seedPost(t, f.postRepo, author)
	parent := f.seedComment(t, post.ID, author, "top level")

	var replyIDs []uuid.UUID
	for i := 0; i < 2; i++ {
		reply := &model.Comment{PostID: post.ID, ParentID: &parent.ID, UserID: author, Content: "reply"}
		if err := f.commentRepo.Create(context.Background(), reply); err != nil {
			t.Fatalf("seed reply: %v", err)
		}
		replyIDs = append(replyIDs, reply.ID)
	}

	resp, err := f.svc.GetRepliesByCommentID(context.Background(), parent.ID, dto.PaginationQuery{})
	if err != nil {
		t.Fatalf("GetRepliesByCommentID: %v", err)
	}

	if resp.Total != 2 || len(resp.Comments) != 2 {
		t.Fatalf("got %d replies (total %d), want 2", len(resp.Comments), resp.Total)
	}
	for i, want := range replyIDs {
		if resp.Comments[i].ID != want {
			t.Errorf("reply[%d] = %v, want %v", i, resp.Comments[i].ID, want)
		}
	}
}
