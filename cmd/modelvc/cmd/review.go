package cmd

import (
	"github.com/metaforge/modelvc/pkg/core"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Commands to manage merge reviews",
	Long: "Commands to manage merge reviews. A review is a proposal to merge a " +
		"workspace head into its source stream, carrying approvals until it is " +
		"committed or closed.",
}

var reviewCreate = &cobra.Command{
	Use:   "create",
	Short: "Open a review",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		spec, err := paramsToWorkspaceSpec(modelvcFlags)
		if err != nil {
			wrapFatalln("workspace spec", err)
			return
		}
		descriptor, err := core.CreateReview(spec, modelvcFlags.review.Title, paramsToContributor(modelvcFlags), stores)
		if err != nil {
			wrapFatalln("create review", err)
			return
		}
		printYAML(descriptor)
	},
}

var reviewList = &cobra.Command{
	Use:   "list",
	Short: "List reviews",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		stream, err := paramsToStream(modelvcFlags)
		if err != nil {
			wrapFatalln("stream", err)
			return
		}
		reviews, err := core.ListReviews(stream, stores)
		if err != nil {
			wrapFatalln("list reviews", err)
			return
		}
		for _, descriptor := range reviews {
			infoLogger.Printf("%s , %s , %s , workspace %s",
				descriptor.ID, descriptor.State, descriptor.Title, descriptor.Workspace.WorkspaceID)
		}
	},
}

var reviewApprove = &cobra.Command{
	Use:   "approve",
	Short: "Approve an open review",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		stream, err := paramsToStream(modelvcFlags)
		if err != nil {
			wrapFatalln("stream", err)
			return
		}
		descriptor, err := core.ApproveReview(stream, modelvcFlags.review.ID, modelvcFlags.contributor.Name, stores)
		if err != nil {
			wrapFatalln("approve review", err)
			return
		}
		printYAML(descriptor)
	},
}

var reviewClose = &cobra.Command{
	Use:   "close",
	Short: "Close an open review",
	Long:  "Move an open review to a terminal state: committed when merged, closed when abandoned",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := paramsToStores(modelvcFlags)
		if err != nil {
			wrapFatalln("initialize store", err)
			return
		}
		defer func() { _ = stores.Close() }()
		stream, err := paramsToStream(modelvcFlags)
		if err != nil {
			wrapFatalln("stream", err)
			return
		}
		descriptor, err := core.CloseReview(stream, modelvcFlags.review.ID,
			model.ReviewState(modelvcFlags.review.State), stores)
		if err != nil {
			wrapFatalln("close review", err)
			return
		}
		printYAML(descriptor)
	},
}

func init() {
	requiredFlags := []string{
		addProjectFlag(reviewCreate),
		addWorkspaceFlag(reviewCreate),
		addReviewTitleFlag(reviewCreate),
	}
	addWorkspaceTypeFlag(reviewCreate)
	addPatchFlag(reviewCreate)
	addContributorNameFlag(reviewCreate)
	addContributorEmailFlag(reviewCreate)
	for _, flag := range requiredFlags {
		if err := reviewCreate.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	reviewCmd.AddCommand(reviewCreate)

	requiredFlags = []string{addProjectFlag(reviewList)}
	addPatchFlag(reviewList)
	for _, flag := range requiredFlags {
		if err := reviewList.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	reviewCmd.AddCommand(reviewList)

	requiredFlags = []string{
		addProjectFlag(reviewApprove),
		addReviewFlag(reviewApprove),
	}
	addPatchFlag(reviewApprove)
	addContributorNameFlag(reviewApprove)
	for _, flag := range requiredFlags {
		if err := reviewApprove.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	reviewCmd.AddCommand(reviewApprove)

	requiredFlags = []string{
		addProjectFlag(reviewClose),
		addReviewFlag(reviewClose),
	}
	addPatchFlag(reviewClose)
	reviewClose.Flags().StringVar(&modelvcFlags.review.State, "state", "closed",
		"The terminal state, one of: committed, closed")
	for _, flag := range requiredFlags {
		if err := reviewClose.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
	reviewCmd.AddCommand(reviewClose)

	rootCmd.AddCommand(reviewCmd)
}
