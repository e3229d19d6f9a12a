package server

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/panjf2000/gnet/v2"

	"gostomp/codec/stomp"
	"gostomp/comm"
	"gostomp/comm/logging"
	"gostomp/comm/sequence"
)

type Server struct {
	gnet.BuiltinEventEngine
	engine     gnet.Engine
	protocol   string
	address    string
	multicore  bool
	pool       *ants.Pool
	encoder    *stomp.Encoder
	broker     *Broker
	sessionSeq sequence.Seq32
	conMap     sync.Map
	window     chan struct{}
}

// session couples one connection with its frame reassembly buffer and
// protocol state.
type session struct {
	conn    gnet.Conn
	decoder *stomp.StreamDecoder
	handler *Handler
}

func StartServer(port int, multicore bool) {
	options := ants.Options{
		ExpiryDuration:   time.Minute,
		Nonblocking:      false,
		MaxBlockingTasks: Conf.MaxPoolSize,
		PreAlloc:         false,
		PanicHandler: func(e interface{}) {
			log.Errorf("%v", e)
		},
	}
	pool, _ := ants.NewPool(Conf.MaxPoolSize, ants.WithOptions(options))
	defer pool.Release()

	ss := &Server{
		protocol:   "tcp",
		address:    fmt.Sprintf(":%d", port),
		multicore:  multicore,
		pool:       pool,
		encoder:    stomp.NewEncoder(Conf.Mode()),
		broker:     NewBroker(sequence.NewSnowflake(Conf.DatacenterId, Conf.WorkerId)),
		sessionSeq: sequence.NewCycle(Conf.DatacenterId, Conf.WorkerId),
		window:     make(chan struct{}, Conf.ReceiveWindowSize), // 用通道控制消息接收窗口
	}

	err := gnet.Run(ss, ss.protocol+"://"+ss.address, gnet.WithMulticore(multicore), gnet.WithTicker(true))
	log.Errorf("server(%s://%s) exits with error: %v", ss.protocol, ss.address, err)
}

func (s *Server) OnBoot(eng gnet.Engine) (action gnet.Action) {
	log.Infof("[%-9s] running server on %s with multi-core=%t", "OnBoot", fmt.Sprintf("%s://%s", s.protocol, s.address), s.multicore)
	s.engine = eng
	return
}

func (s *Server) OnShutdown(eng gnet.Engine) {
	log.Warnf("[%-9s] shutdown server %s ...", "OnShutdown", fmt.Sprintf("%s://%s", s.protocol, s.address))
	for eng.CountConnections() > 0 {
		time.Sleep(10 * time.Millisecond)
	}
	log.Warnf("[%-9s] shutdown server %s completed!", "OnShutdown", fmt.Sprintf("%s://%s", s.protocol, s.address))
}

func (s *Server) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	if s.activeCons() >= Conf.MaxCons {
		log.Warnf("[%-9s] [%v<->%v] FLOW CONTROL：connections threshold reached, closing new connection...", "OnOpen", c.RemoteAddr(), c.LocalAddr())
		return nil, gnet.Close
	}
	sess := &session{
		conn:    c,
		decoder: stomp.NewStreamDecoder(Conf.Mode()),
	}
	sess.handler = NewHandler(s.broker, strconv.FormatInt(int64(s.sessionSeq.NextVal()), 10), s.writer(c))
	c.SetContext(sess)
	s.conMap.Store(c.RemoteAddr().String(), sess)
	log.Infof("[%-9s] [%v<->%v] activeCons=%d.", "OnOpen", c.RemoteAddr(), c.LocalAddr(), s.activeCons())
	return
}

func (s *Server) OnClose(c gnet.Conn, e error) (action gnet.Action) {
	log.Warnf("[%-9s] [%v<->%v] activeCons=%d, reason=%v.", "OnClose", c.RemoteAddr(), c.LocalAddr(), s.activeCons(), e)
	if sess, ok := c.Context().(*session); ok {
		sess.handler.Disconnect()
	}
	s.conMap.Delete(c.RemoteAddr().String())
	return
}

func (s *Server) OnTraffic(c gnet.Conn) (action gnet.Action) {
	sess, ok := c.Context().(*session)
	if !ok {
		return gnet.Close
	}
	chunk := comm.TakeBytes(c, c.InboundBuffered())
	if len(chunk) == 0 {
		return gnet.None
	}
	comm.LogHex(logging.DebugLevel, "Frame", chunk)
	sess.decoder.Feed(chunk)

	for {
		fr, err := sess.decoder.Next()
		if err != nil {
			// the decoder resynchronized past the bad frame, the session survives
			log.Errorf("[%-9s] [%v<->%v] decode error: %v", "OnTraffic", c.RemoteAddr(), c.LocalAddr(), err)
			sess.handler.Err(err.Error())
			continue
		}
		if fr == nil {
			break
		}
		log.Debugf("[%-9s] <<< %s", "OnTraffic", fr)
		s.dispatch(sess, fr)
	}

	if sess.decoder.Buffered() > Conf.MaxFrameSize {
		log.Warnf("[%-9s] [%v<->%v] frame exceeds %d bytes, closing...", "OnTraffic", c.RemoteAddr(), c.LocalAddr(), Conf.MaxFrameSize)
		return gnet.Close
	}
	return gnet.None
}

// dispatch routes SEND frames through the worker pool gated by the receive
// window; everything else is handled inline to keep session control frames
// ordered.
func (s *Server) dispatch(sess *session, fr *stomp.Frame) {
	if stomp.Canonical(fr.Command) != stomp.CmdSend {
		sess.handler.Handle(fr)
		return
	}
	select {
	case s.window <- struct{}{}:
		_ = s.pool.Submit(func() {
			defer func() { <-s.window }()
			sess.handler.Handle(fr)
		})
	default:
		log.Warnf("[%-9s] FLOW CONTROL：receive window threshold reached.", "OnTraffic")
		sess.handler.Err("receive window threshold reached")
	}
}

func (s *Server) OnTick() (delay time.Duration, action gnet.Action) {
	log.Infof("[%-9s] %d active connections.", "OnTick", s.activeCons())
	s.conMap.Range(func(key, value interface{}) bool {
		addr := key.(string)
		sess, ok := value.(*session)
		if ok {
			_ = s.pool.Submit(func() {
				// a lone EOL is the server-side heart-beat
				err := sess.conn.AsyncWrite([]byte{stomp.LF}, nil)
				if err != nil {
					log.Errorf("[%-9s] >>> heart-beat to %s, error: %v", "OnTick", addr, err)
				}
			})
		}
		return true
	})
	return Conf.HeartbeatDuration, gnet.None
}

// writer builds the outbound path for one connection: encode, then async
// write from the pool.
func (s *Server) writer(c gnet.Conn) func(fr *stomp.Frame) {
	return func(fr *stomp.Frame) {
		b, err := s.encoder.Encode(fr)
		if err != nil {
			log.Errorf("[%-9s] encode %s error: %v", "OnTraffic", fr, err)
			return
		}
		err = c.AsyncWrite(b, func(c gnet.Conn) error {
			log.Debugf("[%-9s] >>> %s", "OnTraffic", fr)
			return nil
		})
		if err != nil {
			log.Errorf("[%-9s] >>> %s error: %v", "OnTraffic", fr, err)
		}
	}
}

func (s *Server) activeCons() int {
	counter := 0
	s.conMap.Range(func(key, value interface{}) bool {
		counter++
		return true
	})
	return counter
}
