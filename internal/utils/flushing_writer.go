package utils

import (
	"io"
	"sync"
)

// flushableWriter is satisfied by writers that buffer output, such as bufio.Writer.
type flushableWriter interface {
	Flush() error
}

// FlushingWriter forwards writes to a wrapped writer and flushes it after every write
// so command output reaches the terminal without buffering delays.
type FlushingWriter struct {
	destination io.Writer
	writeMutex  sync.Mutex
}

// NewFlushingWriter wraps destination in a FlushingWriter. Writers that are already
// wrapped pass through unchanged, and a nil destination yields a nil writer.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return nil
	}
	if _, alreadyWrapping := destination.(*FlushingWriter); alreadyWrapping {
		return destination
	}
	return &FlushingWriter{destination: destination}
}

// Write forwards data to the wrapped writer and flushes it when the writer buffers output.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.destination == nil {
		return 0, nil
	}

	flushingWriter.writeMutex.Lock()
	defer flushingWriter.writeMutex.Unlock()

	writtenByteCount, writeError := flushingWriter.destination.Write(data)
	if writeError != nil {
		return writtenByteCount, writeError
	}

	if bufferedDestination, destinationFlushes := flushingWriter.destination.(flushableWriter); destinationFlushes {
		if flushError := bufferedDestination.Flush(); flushError != nil {
			return writtenByteCount, flushError
		}
	}

	return writtenByteCount, nil
}
