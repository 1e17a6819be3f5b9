package utils

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

type (
	// BeforeParallelGroupWorkFunc executes before any work starts with the calculated number of groups.
	BeforeParallelGroupWorkFunc func(numGroups int)
	// MemberWorkFunc runs for each work item (member) of a group.
	MemberWorkFunc func(ctx context.Context, memberNum, workNum int) error
	// GroupWorkDoneFunc runs when a single group's work is done; helpful for merge stages.
	GroupWorkDoneFunc func()
	// GroupWorkFunc runs to determine what work members should do, if any. It is called from
	// within the group's goroutine, so per-group state (e.g. a private copy of a model) can be
	// created here without synchronization.
	GroupWorkFunc func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc, error)
)

// GroupWorkParallel splits totalSize work items into at most maxGroups contiguous groups and runs
// each group in its own goroutine. A maxGroups <= 0 means ParallelFactor. The call returns once
// every group has finished. The first member error cancels the context passed to the remaining
// members; all errors, including recovered panics, are combined in the result.
func GroupWorkParallel(
	ctx context.Context,
	totalSize, maxGroups int,
	before BeforeParallelGroupWorkFunc,
	groupWork GroupWorkFunc,
) error {
	if maxGroups <= 0 {
		maxGroups = ParallelFactor
	}
	numGroups := MinInt(maxGroups, totalSize)
	if before != nil {
		before(numGroups)
	}
	if numGroups <= 0 {
		return nil
	}
	groupSize := int(math.Floor(float64(totalSize) / float64(numGroups)))
	extra := totalSize % numGroups

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var bigError error
	var bigErrorMutex sync.Mutex
	storeError := func(err error) {
		bigErrorMutex.Lock()
		defer bigErrorMutex.Unlock()
		bigError = multierr.Combine(bigError, err)
	}

	var wait sync.WaitGroup
	wait.Add(numGroups)
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		utils.PanicCapturingGo(func() {
			defer wait.Done()
			defer func() {
				if thePanic := recover(); thePanic != nil {
					storeError(fmt.Errorf("got panic running group %d in parallel: %v", groupNum, thePanic))
					cancel()
				}
			}()

			thisGroupSize := groupSize
			if groupNum == (numGroups - 1) {
				thisGroupSize += extra
			}
			from := groupSize * groupNum
			to := from + thisGroupSize
			memberWork, groupWorkDone, err := groupWork(groupNum, thisGroupSize, from, to)
			if err != nil {
				storeError(err)
				cancel()
				return
			}
			if memberWork != nil {
				memberNum := 0
				for workNum := from; workNum < to; workNum++ {
					if err := memberWork(ctx, memberNum, workNum); err != nil {
						storeError(err)
						cancel()
						return
					}
					memberNum++
				}
			}
			if groupWorkDone != nil {
				groupWorkDone()
			}
		})
	}
	wait.Wait()
	return bigError
}
