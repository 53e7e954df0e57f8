package metrics

import (
	"context"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// InterfaceCounters holds the cumulative counters of one interface
type InterfaceCounters struct {
	Interface string
	Values    map[telemetrics.Metric]uint64
}

// CounterSource reads the current counters of every interface
type CounterSource interface {
	Counters(ctx context.Context) ([]InterfaceCounters, error)
}

// PSUtilSource reads interface counters from the operating system
type PSUtilSource struct{}

func (PSUtilSource) Counters(ctx context.Context) ([]InterfaceCounters, error) {
	stats, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}

	out := make([]InterfaceCounters, 0, len(stats))
	for _, s := range stats {
		out = append(out, InterfaceCounters{
			Interface: s.Name,
			Values: map[telemetrics.Metric]uint64{
				telemetrics.RxPackets:    s.PacketsRecv,
				telemetrics.TxPackets:    s.PacketsSent,
				telemetrics.RxBytes:      s.BytesRecv,
				telemetrics.TxBytes:      s.BytesSent,
				telemetrics.RxDropped:    s.Dropin,
				telemetrics.TxDropped:    s.Dropout,
				telemetrics.RxFifoErrors: s.Fifoin,
				telemetrics.TxFifoErrors: s.Fifoout,
			},
		})
	}
	return out, nil
}
