package main

import (
	"flag"

	"gostomp/comm"
	"gostomp/comm/logging"
	"gostomp/server"
)

var log = logging.GetDefaultLogger()

func main() {
	var port int
	var multicore bool
	flag.IntVar(&port, "port", 61613, "--port 61613")
	flag.BoolVar(&multicore, "multicore", true, "--multicore=true")
	flag.Parse()

	server.LoadConf()
	log.Infof("current pid is %s.", comm.SavePid("stompd.pid"))
	comm.StartMonitor(port)

	server.StartServer(port, multicore)
}
