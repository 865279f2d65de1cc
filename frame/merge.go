package frame

import "github.com/0xEdge/frame-evm/frame/lifecycle"

// Merge folds a terminal child frame's effects into its parent (spec
// component J). On CompletedSuccess the child's warm sets, transient
// storage, logs, refunds, self-destructs, creates, and gas refund all
// flow into the parent; on CompletedFailed everything is discarded except
// returnData, and only when the child reverted (spec.md §4.J).
//
// Merge is a no-op if child has no parent (the root frame merges into
// nothing) or if child is not yet terminal.
func Merge(child *Frame) {
	if child.parent == nil || !child.IsTerminal() {
		return
	}

	parent := child.parent

	switch child.State() {
	case lifecycle.CompletedSuccess:
		child.warmSet.MergeInto(parent.warmSet)
		child.transient.CommitToParent()
		child.substate.MergeInto(parent.substate)
		parent.returnData = child.outputData

		parent.logger.Debug("merged child frame", "child", child.id, "parent", parent.id, "outcome", "success")
	case lifecycle.CompletedFailed:
		if child.reverted {
			parent.returnData = child.revertReason
		} else {
			parent.returnData = nil
		}

		parent.logger.Debug("discarded child frame", "child", child.id, "parent", parent.id, "outcome", "failed")
	}
}
