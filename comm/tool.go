package comm

import (
	"bufio"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strconv"
	"strings"

	"github.com/panjf2000/gnet/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"gostomp/comm/logging"
)

var log = logging.GetDefaultLogger()

// TakeBytes 消费一定字节数的数据
func TakeBytes(c gnet.Conn, bytes int) []byte {
	if c.InboundBuffered() < bytes {
		return nil
	}
	frame, err := c.Peek(bytes)
	if err != nil {
		log.Errorf("[%-9s] read error: %v", "OnTraffic", err)
		return nil
	}
	_, err = c.Discard(bytes)
	if err != nil {
		log.Errorf("[%-9s] read error: %v", "OnTraffic", err)
		return nil
	}
	return frame
}

// DecodeText converts body bytes to a string honoring the charset parameter
// of a content-type header value, e.g. "text/plain;charset=utf-16be".
// An empty or utf-8 charset is a passthrough.
func DecodeText(body []byte, contentType string) (string, error) {
	cs := charsetOf(contentType)
	switch cs {
	case "", "utf-8", "us-ascii":
		return string(body), nil
	case "ucs-2":
		e := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		bts, _, err := transform.Bytes(e.NewDecoder(), body)
		return string(bts), err
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", cs, err)
	}
	bts, _, err := transform.Bytes(enc.NewDecoder(), body)
	return string(bts), err
}

// EncodeText is the opposite of DecodeText.
func EncodeText(s string, contentType string) ([]byte, error) {
	cs := charsetOf(contentType)
	switch cs {
	case "", "utf-8", "us-ascii":
		return []byte(s), nil
	case "ucs-2":
		e := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		bts, _, err := transform.Bytes(e.NewEncoder(), []byte(s))
		return bts, err
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", cs, err)
	}
	bts, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	return bts, err
}

func charsetOf(contentType string) string {
	for _, part := range strings.Split(contentType, ";")[1:] {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "charset=") {
			return strings.ToLower(strings.Trim(part[len("charset="):], `"`))
		}
	}
	return ""
}

func LogHex(level logging.Level, model string, bts []byte) {
	msg := fmt.Sprintf("[OnTraffic] Hex %s: %x", model, bts)
	if level == logging.DebugLevel {
		log.Debugf(msg)
	} else if level == logging.ErrorLevel {
		log.Errorf(msg)
	} else if level == logging.WarnLevel {
		log.Warnf(msg)
	} else {
		log.Infof(msg)
	}
}

// SavePid 在程序执行的当前目录生成pid文件
func SavePid(f string) string {
	file, err := os.OpenFile(f, os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		log.Errorf("%v", err)
	}
	pid := fmt.Sprintf("%d", os.Getpid())

	writer := bufio.NewWriter(file)
	_, _ = writer.WriteString(pid)
	defer func(file *os.File, writer *bufio.Writer) {
		_ = writer.Flush()
		_ = file.Close()
	}(file, writer)

	return pid
}

// StartMonitor 开启pprof，监听请求
func StartMonitor(port int) {
	go func() {
		addr := strconv.Itoa(port + 1)
		log.Infof("[Pprof    ] http://localhost:%s/debug/pprof/", addr)
		if err := http.ListenAndServe(":"+addr, nil); err != nil {
			log.Infof("start pprof failed on %s", addr)
		}
	}()
}
