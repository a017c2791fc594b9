package binformat

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/transitcore/raptorengine/internal/transit"
)

// ReadStops parses the binary stops stream described in spec.md §6: header
// magic RSTS (v1) or RST2 (v2), little-endian throughout. V1 and V2 are
// layout-identical at the stop level; only the companion routes file
// differs between versions, so the returned FormatVersion is informational.
func ReadStops(r io.Reader) ([]transit.Stop, FormatVersion, error) {
	br, closeFn, err := openStream(r)
	if err != nil {
		return nil, 0, err
	}
	defer closeFn()

	magic, err := peekMagic(br)
	if err != nil {
		return nil, 0, err
	}

	var version FormatVersion
	switch magic {
	case stopsMagicV1:
		version = V1
	case stopsMagicV2:
		version = V2
	default:
		return nil, 0, errors.Errorf("stops file: unknown magic %q (%v)", string(magic[:]), magic)
	}
	if err := discard(br, 4); err != nil {
		return nil, 0, err
	}

	var fileVersion uint16
	if err := binary.Read(br, binary.LittleEndian, &fileVersion); err != nil {
		return nil, 0, errors.Wrap(err, "stops file: truncated version field")
	}

	var stopCount uint32
	if err := binary.Read(br, binary.LittleEndian, &stopCount); err != nil {
		return nil, 0, errors.Wrap(err, "stops file: truncated stop count")
	}

	stops := make([]transit.Stop, stopCount)
	for i := range stops {
		s, err := readOneStop(br)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "stops file: stop %d", i)
		}
		stops[i] = s
	}
	return stops, version, nil
}

func readOneStop(br *bufio.Reader) (transit.Stop, error) {
	var s transit.Stop

	var id uint32
	if err := binary.Read(br, binary.LittleEndian, &id); err != nil {
		return s, errors.Wrap(err, "id")
	}
	s.ID = transit.StopID(id)

	var nameLen uint16
	if err := binary.Read(br, binary.LittleEndian, &nameLen); err != nil {
		return s, errors.Wrap(err, "name length")
	}
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(br, nameBuf); err != nil {
		return s, errors.Wrap(err, "name bytes")
	}
	s.Name = string(nameBuf)

	if err := binary.Read(br, binary.LittleEndian, &s.Lat); err != nil {
		return s, errors.Wrap(err, "lat")
	}
	if err := binary.Read(br, binary.LittleEndian, &s.Lon); err != nil {
		return s, errors.Wrap(err, "lon")
	}

	var routeRefCount uint32
	if err := binary.Read(br, binary.LittleEndian, &routeRefCount); err != nil {
		return s, errors.Wrap(err, "route ref count")
	}
	s.RouteIDs = make([]transit.RouteID, routeRefCount)
	for i := range s.RouteIDs {
		var rid uint32
		if err := binary.Read(br, binary.LittleEndian, &rid); err != nil {
			return s, errors.Wrapf(err, "route ref %d", i)
		}
		s.RouteIDs[i] = transit.RouteID(rid)
	}

	var transferCount uint32
	if err := binary.Read(br, binary.LittleEndian, &transferCount); err != nil {
		return s, errors.Wrap(err, "transfer count")
	}
	s.Transfers = make([]transit.StopTransfer, transferCount)
	for i := range s.Transfers {
		var targetID uint32
		var walk int32
		if err := binary.Read(br, binary.LittleEndian, &targetID); err != nil {
			return s, errors.Wrapf(err, "transfer %d target", i)
		}
		if err := binary.Read(br, binary.LittleEndian, &walk); err != nil {
			return s, errors.Wrapf(err, "transfer %d walk seconds", i)
		}
		s.Transfers[i] = transit.StopTransfer{TargetStopID: transit.StopID(targetID), WalkSeconds: walk}
	}

	return s, nil
}
