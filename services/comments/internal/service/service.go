// Package service orchestrates the comment lifecycle: create, edit, soft
// delete, like/report counters and the tree/thread read paths. All tree
// mathematics lives in the threading package; all persistence behind the
// store contracts.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/forum-platform/services/comments/internal/publisher"
	"github.com/example/forum-platform/services/comments/internal/store"
	"github.com/example/forum-platform/services/comments/internal/threading"
)

// CreateRequest is an already-validated comment creation request.
type CreateRequest struct {
	PostID           string
	ParentID         *string
	Content          string
	MentionedUserIDs []string
}

// UpdateRequest is an already-validated content edit. A nil MentionedUserIDs
// leaves the stored mentions untouched.
type UpdateRequest struct {
	Content          string
	MentionedUserIDs []string
}

// ReadOptions tune the tree/thread read paths.
type ReadOptions struct {
	IncludeDeleted bool
	IncludeAuthor  bool
}

// CommentWithAuthor joins a comment with its author projection.
type CommentWithAuthor struct {
	Comment store.Comment `json:"comment"`
	Author  *store.Author `json:"author,omitempty"`
}

// Config carries the optional collaborators of a Service.
type Config struct {
	Events     *publisher.Publisher
	Logger     *zap.Logger
	EditWindow time.Duration
	Now        func() time.Time
}

// Service is the comment lifecycle service.
type Service struct {
	comments store.CommentStore
	posts    store.PostStore
	users    store.UserStore

	events     *publisher.Publisher
	log        *zap.Logger
	editWindow time.Duration
	now        func() time.Time
}

// New wires a Service. Zero Config fields get sane defaults: nop logger,
// stub publisher, the default 24h edit window, UTC wall clock.
func New(comments store.CommentStore, posts store.PostStore, users store.UserStore, cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.EditWindow <= 0 {
		cfg.EditWindow = threading.DefaultEditWindow
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		comments:   comments,
		posts:      posts,
		users:      users,
		events:     cfg.Events,
		log:        cfg.Logger,
		editWindow: cfg.EditWindow,
		now:        cfg.Now,
	}
}

// Create persists a new comment under an existing post and, for replies, an
// existing parent on the same post. Depth and path derive from the parent;
// a parent already at the maximum depth rejects the create outright.
//
// The child row is inserted before the parent's child_ids registration. If
// the registration fails the child is left orphaned (reachable via parent_id
// only); the tree builder tolerates that, so no rollback is attempted.
func (s *Service) Create(ctx context.Context, req CreateRequest, authorID string) (CommentWithAuthor, error) {
	ok, err := s.posts.Exists(ctx, req.PostID)
	if err != nil {
		return CommentWithAuthor{}, err
	}
	if !ok {
		return CommentWithAuthor{}, ErrPostNotFound
	}

	ok, err = s.users.Exists(ctx, authorID)
	if err != nil {
		return CommentWithAuthor{}, err
	}
	if !ok {
		return CommentWithAuthor{}, ErrAuthorNotFound
	}

	var parent *store.Comment
	if req.ParentID != nil {
		p, err := s.comments.FindByID(ctx, *req.ParentID)
		if errors.Is(err, store.ErrNotFound) {
			return CommentWithAuthor{}, ErrParentNotFound
		}
		if err != nil {
			return CommentWithAuthor{}, err
		}
		if p.PostID != req.PostID {
			return CommentWithAuthor{}, ErrParentPostMismatch
		}
		if p.Depth >= threading.MaxDepth {
			return CommentWithAuthor{}, ErrMaxDepthExceeded
		}
		parent = &p
	}

	now := s.now()
	created, err := s.comments.Insert(ctx, store.Comment{
		PostID:           req.PostID,
		AuthorID:         authorID,
		ParentID:         req.ParentID,
		Content:          req.Content,
		Depth:            threading.Depth(parent),
		Path:             threading.Path(parent),
		ChildIDs:         []string{},
		Status:           store.StatusActive,
		MentionedUserIDs: req.MentionedUserIDs,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return CommentWithAuthor{}, err
	}

	if parent != nil {
		if err := s.comments.AppendChild(ctx, parent.ID, created.ID); err != nil {
			s.log.Warn("child_ids registration failed, comment left orphaned",
				zap.String("comment_id", created.ID),
				zap.String("parent_id", parent.ID),
				zap.Error(err))
		}
	}

	s.events.Publish(publisher.SubjectCommentCreated, publisher.Event{
		EventName:        "comment_created",
		CommentID:        created.ID,
		PostID:           created.PostID,
		ActorID:          authorID,
		MentionedUserIDs: created.MentionedUserIDs,
	})

	return s.withAuthor(ctx, created)
}

// Update applies a content edit: previous content goes to the edit history,
// the edited flags flip and updated_at bumps. Only the author may edit, only
// while undeleted, only within the edit window.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, actorID string) (CommentWithAuthor, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return CommentWithAuthor{}, err
	}
	if c.AuthorID != actorID {
		return CommentWithAuthor{}, ErrNotCommentAuthor
	}
	if c.IsDeleted {
		return CommentWithAuthor{}, ErrAlreadyDeleted
	}
	now := s.now()
	if !threading.Editable(c, actorID, now, s.editWindow) {
		return CommentWithAuthor{}, ErrEditWindowExpired
	}

	mentioned := req.MentionedUserIDs
	if mentioned == nil {
		mentioned = c.MentionedUserIDs
	}
	updated, err := s.comments.ApplyEdit(ctx, id, store.EditPatch{
		Content:          req.Content,
		MentionedUserIDs: mentioned,
		EditHistory:      append(c.EditHistory, store.EditRecord{EditedAt: now, PreviousContent: c.Content}),
		UpdatedAt:        now,
	})
	if err != nil {
		return CommentWithAuthor{}, err
	}

	s.events.Publish(publisher.SubjectCommentEdited, publisher.Event{
		EventName: "comment_edited",
		CommentID: updated.ID,
		PostID:    updated.PostID,
		ActorID:   actorID,
	})

	return s.withAuthor(ctx, updated)
}

// Remove soft-deletes a comment: tombstoned content, deleted flags, children
// untouched. Only the author may delete; having replies never blocks it.
func (s *Service) Remove(ctx context.Context, id, actorID string) (store.Comment, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return store.Comment{}, err
	}
	if c.AuthorID != actorID {
		return store.Comment{}, ErrNotCommentAuthor
	}
	if !threading.Deletable(c, actorID) {
		return store.Comment{}, ErrAlreadyDeleted
	}

	deleted, err := s.comments.SoftDelete(ctx, id, store.Deletion{
		DeletedAt: s.now(),
		Status:    store.StatusDeleted,
		Content:   store.Tombstone,
	})
	if err != nil {
		return store.Comment{}, err
	}

	s.events.Publish(publisher.SubjectCommentDeleted, publisher.Event{
		EventName: "comment_deleted",
		CommentID: deleted.ID,
		PostID:    deleted.PostID,
		ActorID:   actorID,
	})

	return deleted, nil
}

// AdminRemove soft-deletes any comment on behalf of a moderator. The author
// check is skipped; an already-deleted comment still rejects.
func (s *Service) AdminRemove(ctx context.Context, id, actorID string) (store.Comment, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return store.Comment{}, err
	}
	if c.IsDeleted {
		return store.Comment{}, ErrAlreadyDeleted
	}

	deleted, err := s.comments.SoftDelete(ctx, id, store.Deletion{
		DeletedAt: s.now(),
		Status:    store.StatusDeleted,
		Content:   store.Tombstone,
	})
	if err != nil {
		return store.Comment{}, err
	}

	s.events.Publish(publisher.SubjectCommentDeleted, publisher.Event{
		EventName: "comment_deleted",
		CommentID: deleted.ID,
		PostID:    deleted.PostID,
		ActorID:   actorID,
		Properties: map[string]any{
			"moderation": true,
		},
	})

	return deleted, nil
}

// Like atomically bumps the like counter. Any caller may like any comment.
func (s *Service) Like(ctx context.Context, id string) (store.Comment, error) {
	return s.bump(ctx, id, store.CounterLikes, publisher.SubjectCommentLiked, "comment_liked")
}

// Report atomically bumps the report counter. Any caller may report.
func (s *Service) Report(ctx context.Context, id string) (store.Comment, error) {
	return s.bump(ctx, id, store.CounterReports, publisher.SubjectCommentReported, "comment_reported")
}

func (s *Service) bump(ctx context.Context, id, field, subject, eventName string) (store.Comment, error) {
	c, err := s.comments.IncrementCounter(ctx, id, field, 1)
	if errors.Is(err, store.ErrNotFound) {
		return store.Comment{}, ErrCommentNotFound
	}
	if err != nil {
		return store.Comment{}, err
	}

	s.events.Publish(subject, publisher.Event{
		EventName: eventName,
		CommentID: c.ID,
		PostID:    c.PostID,
	})

	return c, nil
}

// TreeByPost loads a post's comments and materializes the nested forest.
func (s *Service) TreeByPost(ctx context.Context, postID string, opts ReadOptions) ([]threading.TreeNode, error) {
	comments, authors, err := s.load(ctx, postID, opts)
	if err != nil {
		return nil, err
	}
	return threading.BuildTree(comments, authors), nil
}

// ThreadByPost loads a post's comments and flattens them depth-major.
func (s *Service) ThreadByPost(ctx context.Context, postID string, opts ReadOptions) ([]threading.ThreadEntry, error) {
	comments, authors, err := s.load(ctx, postID, opts)
	if err != nil {
		return nil, err
	}
	return threading.BuildThread(comments, authors), nil
}

func (s *Service) load(ctx context.Context, postID string, opts ReadOptions) ([]store.Comment, map[string]store.Author, error) {
	comments, err := s.comments.FindByPost(ctx, postID, opts.IncludeDeleted)
	if err != nil {
		return nil, nil, err
	}

	var authors map[string]store.Author
	if opts.IncludeAuthor && len(comments) > 0 {
		seen := make(map[string]bool, len(comments))
		ids := make([]string, 0, len(comments))
		for _, c := range comments {
			if !seen[c.AuthorID] {
				seen[c.AuthorID] = true
				ids = append(ids, c.AuthorID)
			}
		}
		authors, err = s.users.Projections(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
	}
	return comments, authors, nil
}

func (s *Service) find(ctx context.Context, id string) (store.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Comment{}, ErrCommentNotFound
	}
	return c, err
}

func (s *Service) withAuthor(ctx context.Context, c store.Comment) (CommentWithAuthor, error) {
	authors, err := s.users.Projections(ctx, []string{c.AuthorID})
	if err != nil {
		return CommentWithAuthor{}, err
	}
	out := CommentWithAuthor{Comment: c}
	if a, ok := authors[c.AuthorID]; ok {
		out.Author = &a
	}
	return out, nil
}
