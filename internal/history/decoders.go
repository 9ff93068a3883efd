package history

import (
	"errors"
	"fmt"
	"strings"

	"asset_tracker/internal/audit"
)

func decodeCreation(raw []byte) (rendered, error) {
	p, err := parse[audit.CreationPayload](raw)
	if err != nil {
		return rendered{}, err
	}
	if p.SerialNumber == "" {
		return rendered{}, errors.New("creation payload without serial number")
	}
	obs := "Serial " + p.SerialNumber + " registered"
	if p.Product != "" {
		obs += " as " + p.Product
	}
	if p.State != "" {
		obs += fmt.Sprintf(" (%s)", p.State)
	}
	return rendered{EventCreation, "Asset created", obs}, nil
}

func decodeStateChange(raw []byte) (rendered, error) {
	p, err := parse[audit.StateChangePayload](raw)
	if err != nil {
		return rendered{}, err
	}
	if !p.From.Valid() || !p.To.Valid() {
		return rendered{}, fmt.Errorf("state change between unknown states %q and %q", p.From, p.To)
	}
	obs := fmt.Sprintf("From %s to %s", p.From, p.To)
	if p.Reason != "" {
		obs += ": " + p.Reason
	}
	return rendered{EventStateChange, "State changed", obs}, nil
}

func decodeNewAssignment(raw []byte) (rendered, error) {
	p, err := parse[audit.NewAssignmentPayload](raw)
	if err != nil {
		return rendered{}, err
	}
	if p.DestinationKind == "" {
		return rendered{}, errors.New("assignment payload without destination")
	}
	name := p.DestinationName
	if name == "" {
		name = fmt.Sprintf("#%d", p.DestinationID)
	}
	return rendered{EventNewAssignment, audit.ActionNewAssignment,
		fmt.Sprintf("Assigned to %s %s", p.DestinationKind, name)}, nil
}

func decodeReturn(raw []byte) (rendered, error) {
	p, err := parse[audit.ReturnPayload](raw)
	if err != nil {
		return rendered{}, err
	}
	if p.Implicit {
		return rendered{EventReturn, "Return (implicit)", "Assignment closed when the asset was sent to repair"}, nil
	}
	obs := "Returned to stock"
	if n := strings.TrimSpace(p.Notes); n != "" {
		obs += ". Notes: " + n
	}
	return rendered{EventReturn, audit.ActionReturn, obs}, nil
}

func decodeCancellation(raw []byte) (rendered, error) {
	p, err := parse[audit.CancellationPayload](raw)
	if err != nil {
		return rendered{}, err
	}
	if p.Reason == "" {
		return rendered{}, errors.New("cancellation payload without reason")
	}
	return rendered{EventCancellation, "Assignment cancelled", "Reason: " + p.Reason}, nil
}

func decodeSentToRepair(raw []byte) (rendered, error) {
	p, err := parse[audit.SentToRepairPayload](raw)
	if err != nil {
		return rendered{}, err
	}
	if p.Provider == "" {
		return rendered{}, errors.New("repair payload without provider")
	}
	obs := fmt.Sprintf("Provider %s: %s", p.Provider, p.Problem)
	if p.ClosedAssignmentID != nil {
		obs += fmt.Sprintf(" (assignment #%d closed)", *p.ClosedAssignmentID)
	}
	return rendered{EventSentToRepair, audit.ActionSentToRepair, obs}, nil
}

func decodeReturnedFromRepair(raw []byte) (rendered, error) {
	p, err := parse[audit.ReturnedFromRepairPayload](raw)
	if err != nil {
		return rendered{}, err
	}
	if !p.Outcome.IsOutcome() {
		return rendered{}, fmt.Errorf("unknown repair outcome %q", p.Outcome)
	}
	obs := fmt.Sprintf("Outcome %s: %s", p.Outcome, p.Resolution)
	if p.AssetState != "" {
		obs += fmt.Sprintf("; asset now %s", p.AssetState)
	}
	return rendered{EventReturnedFromRepair, audit.ActionReturnedFromRepair, obs}, nil
}
