package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linkedin/goavro/v2"
)

const (
	StageIngest   = "ingest"
	StageValidate = "validate"
)

// RunRecord summarizes one finished stage run.
type RunRecord struct {
	RunID      string
	Stage      string
	OutputPath string
	NumRows    int64
	FinishedAt time.Time
}

func NewRunRecord(stage, outputPath string, numRows int64) RunRecord {
	return RunRecord{
		RunID:      uuid.NewString(),
		Stage:      stage,
		OutputPath: outputPath,
		NumRows:    numRows,
		FinishedAt: time.Now().UTC(),
	}
}

var runRecordCodec = func() *goavro.Codec {
	type avroField struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	type avroSchemaTemplate struct {
		Type      string      `json:"type"`
		Name      string      `json:"name"`
		Namespace string      `json:"namespace"`
		Fields    []avroField `json:"fields"`
	}

	codecData, err := json.Marshal(avroSchemaTemplate{
		Type:      "record",
		Name:      "RunRecord",
		Namespace: "healthcare.pipeline",
		Fields: []avroField{
			{Name: "run_id", Type: "string"},
			{Name: "stage", Type: "string"},
			{Name: "output_path", Type: "string"},
			{Name: "num_rows", Type: "long"},
			{Name: "finished_at_ms", Type: "long"},
		},
	})
	if err != nil {
		panic(err)
	}
	codec, err := goavro.NewCodec(string(codecData))
	if err != nil {
		panic(err)
	}
	return codec
}()

func (obj RunRecord) ToBytes() ([]byte, error) {
	data, err := runRecordCodec.BinaryFromNative(nil, map[string]interface{}{
		"run_id":         obj.RunID,
		"stage":          obj.Stage,
		"output_path":    obj.OutputPath,
		"num_rows":       obj.NumRows,
		"finished_at_ms": obj.FinishedAt.UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w| failed encoding run %s: %s", ErrInvalidRunRecord, obj.RunID, err)
	}
	return data, nil
}

func NewRunRecordFromBytes(data []byte) (RunRecord, error) {
	native, _, err := runRecordCodec.NativeFromBinary(data)
	if err != nil {
		return RunRecord{}, fmt.Errorf("%w| failed decoding run record: %s", ErrInvalidRunRecord, err)
	}

	fields, ok := native.(map[string]interface{})
	if !ok {
		return RunRecord{}, fmt.Errorf("%w| decoded value is %T", ErrInvalidRunRecord, native)
	}

	runID, ok1 := fields["run_id"].(string)
	stage, ok2 := fields["stage"].(string)
	outputPath, ok3 := fields["output_path"].(string)
	numRows, ok4 := fields["num_rows"].(int64)
	finishedAt, ok5 := fields["finished_at_ms"].(int64)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return RunRecord{}, fmt.Errorf("%w| unexpected field types", ErrInvalidRunRecord)
	}

	return RunRecord{
		RunID:      runID,
		Stage:      stage,
		OutputPath: outputPath,
		NumRows:    numRows,
		FinishedAt: time.UnixMilli(finishedAt).UTC(),
	}, nil
}
