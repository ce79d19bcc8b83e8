package datarecording

import (
	"os"
	"strings"
	"sync"
	"time"
)

const (
	execTableName  = "exec_info"
	execTimeFormat = "2006-01-02 15:04:05.000000000"
)

// execInfo is a property of the program execution.
type execInfo struct {
	Property string
	Value    string
}

// execRecorder records how and when the program was executed.
type execRecorder struct {
	recorder DataRecorder
	entries  []execInfo
}

func newExecRecorder(recorder DataRecorder) *execRecorder {
	recorder.CreateTable(execTableName, execInfo{})

	return &execRecorder{
		recorder: recorder,
	}
}

// Start captures the start time, the command line and the working directory.
func (e *execRecorder) Start() {
	e.entries = append(e.entries,
		execInfo{"Start Time", time.Now().Format(execTimeFormat)},
		execInfo{"Command", strings.Join(os.Args, " ")},
	)

	if cwd, err := os.Getwd(); err == nil {
		e.entries = append(e.entries, execInfo{"Working Directory", cwd})
	}
}

// End writes the captured entries along with the end time.
func (e *execRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(execTableName, entry)
	}

	e.recorder.InsertData(execTableName,
		execInfo{"End Time", time.Now().Format(execTimeFormat)})

	e.entries = nil

	e.recorder.Flush()
}

// execInfoRecorder completes the exec_info table when it is closed or when
// the program exits, whichever comes first.
type execInfoRecorder struct {
	DataRecorder

	once sync.Once
	exec *execRecorder
}

func withExecInfo(recorder DataRecorder) *execInfoRecorder {
	exec := newExecRecorder(recorder)
	exec.Start()

	return &execInfoRecorder{
		DataRecorder: recorder,
		exec:         exec,
	}
}

func (r *execInfoRecorder) end() {
	r.once.Do(r.exec.End)
}

// Close writes the end of the execution and closes the underlying recorder.
func (r *execInfoRecorder) Close() error {
	r.end()
	return r.DataRecorder.Close()
}
