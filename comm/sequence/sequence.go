package sequence

import (
	"sync"
	"time"
)

// Seq32 32位序号生成器
type Seq32 interface {
	NextVal() int32
}

// Cycle is a wrapping 32-bit sequence:
// datacenter 2 bit | worker 3 bit | counter 26 bit.
// Values repeat after 2^26 calls; use it where ids only need to be unique
// per node over a session's lifetime.
type Cycle struct {
	sync.Mutex
	prefix  int32
	counter int32
}

const cycleMask = int32(0x03ffffff)

// NewCycle d for datacenter-id, w for worker-id
func NewCycle(d int32, w int32) *Cycle {
	return &Cycle{prefix: d<<29 | w<<26}
}

func (c *Cycle) NextVal() int32 {
	c.Lock()
	defer c.Unlock()
	c.counter = (c.counter + 1) & cycleMask
	return c.prefix | c.counter
}

// Snowflake generates ids unique within 24 hours across up to 32 nodes:
// 0 | seconds-since-midnight 17 bit | datacenter 2 bit | worker 3 bit | sequence 9 bit.
// A node producing more than 512 ids in one second blocks until the next
// second, so this is for protocol-level ids (message-id, session), not for
// high-volume keys.
type Snowflake struct {
	sync.Mutex
	seconds    int32
	datacenter int32
	worker     int32
	sequence   int32
}

const (
	sequenceMask    = int32(0x01ff)
	datacenterBits  = uint(2)
	workerBits      = uint(3)
	sequenceBits    = uint(9)
	workerShift     = sequenceBits
	datacenterShift = sequenceBits + workerBits
	timestampShift  = sequenceBits + workerBits + datacenterBits
)

// NewSnowflake d for datacenter-id, w for worker-id
func NewSnowflake(d int32, w int32) *Snowflake {
	return &Snowflake{datacenter: d, worker: w}
}

func (s *Snowflake) NextVal() int32 {
	s.Lock()
	defer s.Unlock()
	now := passedSeconds()
	if s.seconds == now {
		s.sequence = (s.sequence + 1) & sequenceMask
		if s.sequence == 0 {
			// sequence exhausted for this second, wait for the next one
			for now <= s.seconds {
				time.Sleep(time.Microsecond)
				now = passedSeconds()
			}
		}
	} else {
		s.sequence = 0
	}
	s.seconds = now
	return now<<timestampShift | s.datacenter<<datacenterShift | s.worker<<workerShift | s.sequence
}

func passedSeconds() int32 {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int32(now.Sub(midnight) / time.Second)
}
