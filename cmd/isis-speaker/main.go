// isis-speaker runs a passive IS-IS speaker against a single interface:
// it forms adjacencies, synchronizes a link-state database, and never
// originates routes of its own.
package main

import (
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	isis "github.com/go-isis/isisd"
)

var (
	flgAreaAddr = kingpin.Flag("area-addr", "This speaker's area address, dotted hex (e.g. 49.0001).").
			Required().String()
	flgDevice = kingpin.Flag("device", "Interface to bind the raw socket to.").
			Required().String()
	flgSrcID = kingpin.Flag("src-id", "6-byte system ID, colon- or dot-separated hex.").String()
	flgLANID = kingpin.Flag("lan-id", "7-byte LAN ID (sysid+pseudonode), colon- or dot-separated hex.").String()
	flgIPAddr = kingpin.Flag("ip-addr", "Address to advertise (repeatable); defaults to the interface's own addresses.").
			Strings()
	flgPassword = kingpin.Flag("password", "Cleartext password carried in an Authentication TLV.").String()
	flgVerbose  = kingpin.Flag("verbose", "Increase logging verbosity (repeatable).").Short('v').Counter()
	flgCapturePrefix = kingpin.Flag("capture-prefix", "Path prefix for capture files; stored in the config, no capture file is written by this program.").String()
	flgCaptureSize   = kingpin.Flag("capture-size", "Maximum bytes per capture file before rotation.").Default("0").Int64()
	flgCaptureFormat = kingpin.Flag("capture-format", "Capture file format (isis|isis2).").Default("isis").String()
	flgMetricsAddr   = kingpin.Flag("metrics-addr", "Address to serve /metrics on; empty disables it.").String()
)

func parseHexID(s string, n int) ([]byte, error) {
	s = strings.NewReplacer(".", "", ":", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex ID %q: %w", s, err)
	}
	if len(b) != n {
		return nil, fmt.Errorf("ID %q must decode to %d bytes, got %d", s, n, len(b))
	}
	return b, nil
}

func parseAreaAddr(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, ".", "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid area address %q: %w", s, err)
	}
	return b, nil
}

func main() {
	kingpin.Parse()

	logger := logrus.New()
	level := logrus.WarnLevel
	switch {
	case *flgVerbose >= 2:
		level = logrus.TraceLevel
	case *flgVerbose == 1:
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	cfg, err := buildConfig()
	if err != nil {
		logger.WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	var sink isis.Sink = isis.NewLoggingSink(logger, logrus.InfoLevel)

	if *flgMetricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*flgMetricsAddr, nil); err != nil {
				logger.WithError(err).Warn("metrics server exited")
			}
		}()
	}

	speaker, err := isis.NewSpeaker(cfg, sink, logger)
	if err != nil {
		logger.WithError(err).Error("failed to start speaker")
		os.Exit(1)
	}
	defer speaker.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		speaker.Stop()
	}()

	if err := speaker.Run(); err != nil {
		logger.WithError(err).Error("event loop exited with error")
		os.Exit(1)
	}
}

func buildConfig() (*isis.Config, error) {
	area, err := parseAreaAddr(*flgAreaAddr)
	if err != nil {
		return nil, err
	}

	cfg := &isis.Config{
		Device:            *flgDevice,
		AreaAddress:       area,
		CleartextPassword: *flgPassword,
		Verbosity:         *flgVerbose,
		CapturePrefix:     *flgCapturePrefix,
		CaptureMaxSize:    *flgCaptureSize,
		CaptureFormat:     *flgCaptureFormat,
		MetricsAddr:       *flgMetricsAddr,
	}

	if *flgSrcID != "" {
		b, err := parseHexID(*flgSrcID, 6)
		if err != nil {
			return nil, err
		}
		copy(cfg.SysID[:], b)
	}

	if *flgLANID != "" {
		b, err := parseHexID(*flgLANID, 7)
		if err != nil {
			return nil, err
		}
		copy(cfg.LANID[:], b)
	} else {
		copy(cfg.LANID[:6], cfg.SysID[:])
	}

	for _, a := range *flgIPAddr {
		ip := net.ParseIP(a)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address %q", a)
		}
		if v4 := ip.To4(); v4 != nil {
			cfg.IPv4Addrs = append(cfg.IPv4Addrs, v4)
		} else {
			cfg.IPv6Addrs = append(cfg.IPv6Addrs, ip)
		}
	}

	return cfg, nil
}
