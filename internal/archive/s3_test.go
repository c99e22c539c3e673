package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/szaher/kontra/internal/conversation"
)

type fakePutObject struct {
	inputs []*s3.PutObjectInput
	err    error
}

func (f *fakePutObject) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveWritesTranscript(t *testing.T) {
	fake := &fakePutObject{}
	a := NewS3WithClient(fake, "debate-transcripts", "prod")

	c := &conversation.Conversation{ID: "conv_test", Topic: "pepsi vs coke", Stance: "coke"}
	_ = c.AppendUser("pepsi is better than coke")
	_ = c.AppendAgent("Coca-Cola outsells Pepsi in nearly every market.")

	if err := a.Archive(context.Background(), c); err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}

	if len(fake.inputs) != 1 {
		t.Fatalf("made %d puts, want 1", len(fake.inputs))
	}
	in := fake.inputs[0]
	if *in.Bucket != "debate-transcripts" {
		t.Errorf("bucket = %q", *in.Bucket)
	}
	if *in.Key != "prod/transcripts/conv_test.json" {
		t.Errorf("key = %q", *in.Key)
	}

	body, err := io.ReadAll(in.Body)
	if err != nil {
		t.Fatal(err)
	}
	var stored conversation.Conversation
	if err := json.Unmarshal(body, &stored); err != nil {
		t.Fatalf("stored object is not a transcript: %v", err)
	}
	if stored.ID != c.ID || len(stored.Turns) != 2 {
		t.Errorf("stored transcript = %+v", stored)
	}
}

func TestArchiveSurfacesPutError(t *testing.T) {
	a := NewS3WithClient(&fakePutObject{err: errors.New("access denied")}, "b", "")

	err := a.Archive(context.Background(), &conversation.Conversation{ID: "conv_x"})
	if err == nil {
		t.Error("expected the put error to surface")
	}
}
