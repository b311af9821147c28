package core

import (
	"context"
	"sort"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/errors"
	"github.com/metaforge/modelvc/pkg/model"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// CreateReview opens a merge proposal for a workspace against its
// source stream. The review records the proposal, it does not move any
// line: merging happens through the workspace operations.
func CreateReview(spec model.WorkspaceSpec, title string, author model.Contributor,
	stores context2.Stores) (model.ReviewDescriptor, error) {
	if err := spec.Validate(); err != nil {
		return model.ReviewDescriptor{}, invalidArgument("workspace spec: %v", err)
	}
	if spec.Access != model.PrimaryAccess {
		return model.ReviewDescriptor{}, invalidArgument("reviews are opened on primary workspaces, not %q copies", spec.Access)
	}
	head, err := ResolveAlias(spec, model.HeadAlias(), stores)
	if err != nil {
		return model.ReviewDescriptor{}, err
	}

	descriptor := model.ReviewDescriptor{
		ID:        model.NewReviewID(),
		Title:     title,
		Workspace: spec,
		State:     model.ReviewOpen,
		Author:    author,
		CreatedAt: nowUTC(),
	}
	if err := writeReview(spec.Source, descriptor, head.ID, true, stores); err != nil {
		return model.ReviewDescriptor{}, err
	}
	stores.Logger().Info("review opened",
		projectField(spec.Source.ProjectID), zap.String("review", descriptor.ID), zap.String("workspace", spec.WorkspaceID))
	return descriptor, nil
}

// writeReview persists a review descriptor as a pointer annotation,
// either creating the pointer or replacing it in place
func writeReview(stream model.Stream, descriptor model.ReviewDescriptor, at model.RevisionID,
	create bool, stores context2.Stores) error {
	annotation, err := yaml.Marshal(descriptor)
	if err != nil {
		return errors.New("marshal review descriptor").Wrap(err)
	}
	ctx := context.Background()
	pointer := model.GetPointerToReview(stream, descriptor.ID)
	if !create {
		if err := stores.Provider().DeletePointer(ctx, pointer); err != nil {
			return asCoreError("rewrite review "+descriptor.ID, err)
		}
	}
	if err := stores.Provider().CreatePointer(ctx, pointer, at, string(annotation)); err != nil {
		return asCoreError("write review "+descriptor.ID, err)
	}
	return nil
}

// GetReview retrieves a review of a stream
func GetReview(stream model.Stream, reviewID string, stores context2.Stores) (model.ReviewDescriptor, error) {
	info, err := stores.Provider().Pointer(context.Background(), model.GetPointerToReview(stream, reviewID))
	if err != nil {
		return model.ReviewDescriptor{}, asCoreError("retrieve review "+reviewID, err)
	}
	return reviewFromAnnotation(reviewID, info.Annotation)
}

func reviewFromAnnotation(reviewID, annotation string) (model.ReviewDescriptor, error) {
	var descriptor model.ReviewDescriptor
	if err := yaml.Unmarshal([]byte(annotation), &descriptor); err != nil {
		return model.ReviewDescriptor{}, errors.New("unmarshal review descriptor").Wrap(err)
	}
	if descriptor.ID == "" {
		descriptor.ID = reviewID
	}
	return descriptor, nil
}

// ListReviews enumerates the reviews of a stream in creation order
func ListReviews(stream model.Stream, stores context2.Stores, opts ...ListOption) (model.ReviewDescriptors, error) {
	settings := newSettings(opts...)
	if err := stream.Validate(); err != nil {
		return nil, invalidArgument("stream: %v", err)
	}
	infos, err := stores.Provider().ListPointers(context.Background(), model.GetPointerPrefixToReviews(stream))
	if err != nil {
		return nil, asCoreError("list reviews on "+stream.Describe(), err)
	}
	reviews := make(model.ReviewDescriptors, 0, len(infos))
	for _, info := range infos {
		if settings.interrupted() {
			return nil, status.ErrInterrupted
		}
		descriptor, err := reviewFromAnnotation("", info.Annotation)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, descriptor)
	}
	sort.Sort(reviews)
	return reviews, nil
}

// ApproveReview records an approval on an open review. Approving twice
// under the same name is idempotent.
func ApproveReview(stream model.Stream, reviewID, approver string, stores context2.Stores) (model.ReviewDescriptor, error) {
	unlock := stores.LockKey(model.GetPointerToReview(stream, reviewID))
	defer unlock()

	descriptor, err := GetReview(stream, reviewID, stores)
	if err != nil {
		return model.ReviewDescriptor{}, err
	}
	if descriptor.State != model.ReviewOpen {
		return model.ReviewDescriptor{}, status.ErrConflict.WrapMessage("review %s is %s, not open", reviewID, descriptor.State)
	}
	for _, name := range descriptor.Approvals {
		if name == approver {
			return descriptor, nil
		}
	}
	descriptor.Approvals = append(descriptor.Approvals, approver)
	head, err := ResolveAlias(descriptor.Workspace, model.HeadAlias(), stores)
	if err != nil {
		return model.ReviewDescriptor{}, err
	}
	if err := writeReview(stream, descriptor, head.ID, false, stores); err != nil {
		return model.ReviewDescriptor{}, err
	}
	return descriptor, nil
}

// CloseReview moves an open review to a terminal state, committed or
// closed. Terminal reviews are immutable, closing twice fails with
// Conflict.
func CloseReview(stream model.Stream, reviewID string, state model.ReviewState,
	stores context2.Stores) (model.ReviewDescriptor, error) {
	if state != model.ReviewCommitted && state != model.ReviewClosed {
		return model.ReviewDescriptor{}, invalidArgument("%q is not a terminal review state", state)
	}
	unlock := stores.LockKey(model.GetPointerToReview(stream, reviewID))
	defer unlock()

	descriptor, err := GetReview(stream, reviewID, stores)
	if err != nil {
		return model.ReviewDescriptor{}, err
	}
	if descriptor.State != model.ReviewOpen {
		return model.ReviewDescriptor{}, status.ErrConflict.WrapMessage("review %s is already %s", reviewID, descriptor.State)
	}
	descriptor.State = state
	info, err := stores.Provider().Pointer(context.Background(), model.GetPointerToReview(stream, reviewID))
	if err != nil {
		return model.ReviewDescriptor{}, asCoreError("retrieve review "+reviewID, err)
	}
	if err := writeReview(stream, descriptor, info.RevisionID, false, stores); err != nil {
		return model.ReviewDescriptor{}, err
	}
	stores.Logger().Info("review closed",
		projectField(stream.ProjectID), zap.String("review", reviewID), zap.Stringer("state", state))
	return descriptor, nil
}
