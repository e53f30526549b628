package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	errorsext "github.com/damnever/libext-go/errors"
	"github.com/damnever/samplewire"
	"github.com/damnever/samplewire/internal/synth"
	"github.com/damnever/samplewire/packet"
	"github.com/damnever/samplewire/stream"
	"go.uber.org/zap"
)

var (
	flagset      = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagVersion  = flagset.Bool("version", false, "Print the version")
	flagMode     = flagset.String("mode", "dump", "The mode: [gen, dump]")
	flagFile     = flagset.String("file", "packets.bin", "The packet file to write or read")
	flagCount    = flagset.Int("count", 16, "The number of packets to generate")
	flagBatch    = flagset.Uint64("batch", 0, "The batch id stamped into generated packets")
	flagRate     = flagset.Uint("rate", 48000, "The sample rate in Hz")
	flagSamples  = flagset.Int("samples", 256, "The number of samples per packet")
	flagFreq     = flagset.Float64("freq", 440, "The frequency of the generated sine wave in Hz")
	flagFlush    = flagset.Bool("flush", false, "Flush the file after every packet")
	flagMaxElems = flagset.Int("max-elements", stream.DefaultMaxElements, "The largest array length accepted while reading")
	flagLogLevel = flagset.String("log-level", "info", "The log level: [debug, info, warn, error, panic, fatal]")
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", *flagMode, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagset.Parse(args)

	if *flagVersion {
		fmt.Println(samplewire.VersionInfo())
		return nil
	}
	stream.SetLogLevel(*flagLogLevel)
	logger := stream.DefaultLogger.Named("samplewire")
	defer logger.Sync()

	switch *flagMode {
	case "gen":
		return gen(logger)
	case "dump":
		_, err := dump(logger)
		return err
	default:
		return fmt.Errorf("unknown mode: %s", *flagMode)
	}
}

func gen(logger *zap.Logger) (err error) {
	f, err := os.Create(*flagFile)
	if err != nil {
		return err
	}
	bufw := bufio.NewWriter(f)
	defer func() {
		multierr := &errorsext.MultiErr{}
		multierr.Append(err)
		multierr.Append(bufw.Flush())
		multierr.Append(f.Close())
		err = multierr.Err()
	}()

	rate := uint32(*flagRate)
	producer := packet.NewProducer()
	w := stream.NewWriter(bufw, stream.Config{Flush: *flagFlush, Logger: logger})
	for i := 0; i < *flagCount; i++ {
		p := producer.MakePacket()
		p.BatchID = *flagBatch
		p.SampleRate = rate
		// Sweep an octave across the batch.
		freq := *flagFreq * (1 + float64(i)/float64(*flagCount))
		p.SampleData = synth.Sine(*flagSamples, freq, rate)
		p.SpectrumData = synth.Spectrum(p.SampleData)
		n, err := w.WritePacket(p)
		if err != nil {
			return err
		}
		logger.Debug("packet written",
			zap.Uint64("packet_id", p.PacketID),
			zap.Int("bytes", n),
			zap.Uint32("checksum", p.Checksum),
		)
	}
	logger.Info("generated", zap.Int("packets", *flagCount), zap.String("file", *flagFile))
	return nil
}

// dump logs every packet in the file and returns how many there were.
func dump(logger *zap.Logger) (int, error) {
	f, err := os.Open(*flagFile)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := stream.NewReader(bufio.NewReader(f), stream.Config{MaxElements: *flagMaxElems, Logger: logger})
	count := 0
	for {
		p, err := r.ReadPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("packet #%d: %w", count, err)
		}
		count++
		logger.Info("packet",
			zap.Uint64("packet_id", p.PacketID),
			zap.Uint64("batch_id", p.BatchID),
			zap.Uint32("sample_rate", p.SampleRate),
			zap.Int("samples", len(p.SampleData)),
			zap.Int("spectrum", len(p.SpectrumData)),
			zap.Uint32("checksum", p.Checksum),
		)
	}
	logger.Info("dumped", zap.Int("packets", count), zap.String("file", *flagFile))
	return count, nil
}
