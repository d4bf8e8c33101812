package schedsim

// Unset is the sentinel value for time fields that haven't happened yet
// (first_dispatch_time/last_dispatch_time/finish_time in spec terms).
const Unset = -1

// Job tracks one unit of work through arrival, zero or more dispatch/preempt
// cycles, and completion.
//
// Invariants: RemainingTime >= 0; if FinishTime is set, RemainingTime == 0;
// FirstDispatchTime <= LastDispatchTime <= FinishTime when all are set; a Job
// is on exactly one core's Running slot or in the ready queue, never both,
// never neither, until it finishes.
type Job struct {
	JobID               int
	ArrivalTime         int
	RemainingTime       int
	OriginalRunningTime int
	Priority            int
	FirstDispatchTime   int
	LastDispatchTime    int
	FinishTime          int
}

func newJob(jobID, arrivalTime, runningTime, priority int) *Job {
	return &Job{
		JobID:               jobID,
		ArrivalTime:         arrivalTime,
		RemainingTime:       runningTime,
		OriginalRunningTime: runningTime,
		Priority:            priority,
		FirstDispatchTime:   Unset,
		LastDispatchTime:    Unset,
		FinishTime:          Unset,
	}
}

// Arrival, Remaining and Prio implement policy.Entry, letting *Job feed the
// comparator family directly.
func (j *Job) Arrival() int64   { return int64(j.ArrivalTime) }
func (j *Job) Remaining() int64 { return int64(j.RemainingTime) }
func (j *Job) Prio() int        { return j.Priority }

func (j *Job) finished() bool { return j.FinishTime != Unset }

func (j *Job) turnaround() int { return j.FinishTime - j.ArrivalTime }
func (j *Job) response() int   { return j.FirstDispatchTime - j.ArrivalTime }
func (j *Job) waiting() int    { return j.turnaround() - j.OriginalRunningTime }
