package systems

import (
	"context"
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
)

/**
 * @brief Describes a job to be run. Run executes on a worker goroutine; the
 * completion callbacks run on the goroutine that calls Update, which is the
 * main thread in the engine loop.
 */
type JobTask struct {
	Name string
	/** @brief Required. The returned value is handed to OnComplete. */
	Run func(ctx context.Context) (any, error)
	/** @brief Optional. Invoked when Run succeeds. */
	OnComplete func(result any)
	/** @brief Optional. Invoked when Run fails. */
	OnFailure func(err error)
}

type jobResult struct {
	task   JobTask
	result any
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Guards closing the queue against in-flight submissions.
	queueMu sync.RWMutex
	closed  bool

	mu       sync.Mutex
	pending  int
	finished []jobResult
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrMissingRun = fmt.Errorf("job without a run function")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := js.run(job)
				if err != nil {
					core.LogError("job %s failed: %s", job.Name, err.Error())
				}
				js.mu.Lock()
				js.finished = append(js.finished, jobResult{task: job, result: result, err: err})
				js.mu.Unlock()
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, r)
		}
	}()
	return job.Run(js.ctx)
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	if jt.Run == nil {
		return ErrMissingRun
	}

	js.queueMu.RLock()
	defer js.queueMu.RUnlock()
	if js.closed {
		return core.ErrAlreadyClosed
	}

	js.mu.Lock()
	js.pending++
	js.mu.Unlock()

	js.jobQueue <- jt
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle. Runs the
 * callbacks of every job finished since the last call and returns how many
 * jobs are still queued or running.
 */
func (js *JobSystem) Update() int {
	js.mu.Lock()
	finished := js.finished
	js.finished = nil
	js.pending -= len(finished)
	pending := js.pending
	js.mu.Unlock()

	for _, f := range finished {
		if f.err != nil {
			if f.task.OnFailure != nil {
				f.task.OnFailure(f.err)
			}
			continue
		}
		if f.task.OnComplete != nil {
			f.task.OnComplete(f.result)
		}
	}
	return pending
}

/**
 * @brief Shuts the job system down. Queued jobs still run, their callbacks
 * are delivered by a final Update.
 */
func (js *JobSystem) Shutdown() error {
	js.queueMu.Lock()
	if js.closed {
		js.queueMu.Unlock()
		return core.ErrAlreadyClosed
	}
	js.closed = true
	close(js.jobQueue)
	js.queueMu.Unlock()

	js.wg.Wait()
	js.cancel()
	js.Update()
	return nil
}
