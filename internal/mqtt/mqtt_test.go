package mqtt

import (
	"errors"
	"testing"
	"time"

	"github.com/kubakubakuba/templogger/internal/config"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

const filter = "templogger/+/temperature"

func TestParseReading(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		topic   string
		payload string
		want    types.Reading
		wantErr bool
	}{
		{
			name:    "bare number uses topic room",
			topic:   "templogger/kitchen/temperature",
			payload: " 21.5\n",
			want:    types.Reading{Room: "kitchen", Temperature: 21.5},
		},
		{
			name:    "json with room and timestamp",
			topic:   "templogger/ignored/temperature",
			payload: `{"room":"attic","temperature":-3,"timestamp":"2024-03-01T12:00:00Z"}`,
			want:    types.Reading{Room: "attic", Temperature: -3, Timestamp: ts},
		},
		{
			name:    "json without room",
			topic:   "templogger/cellar/temperature",
			payload: `{"temperature":12.25}`,
			want:    types.Reading{Room: "cellar", Temperature: 12.25},
		},
		{name: "json without temperature", topic: "templogger/a/temperature", payload: `{"room":"a"}`, wantErr: true},
		{name: "broken json", topic: "templogger/a/temperature", payload: `{"room":`, wantErr: true},
		{name: "not a number", topic: "templogger/a/temperature", payload: "warm", wantErr: true},
		{name: "infinite", topic: "templogger/a/temperature", payload: "+Inf", wantErr: true},
		{name: "no room anywhere", topic: "templogger", payload: "20", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReading(filter, tt.topic, []byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseReading() = %+v; want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseReading() error = %v", err)
			}
			if got.Room != tt.want.Room || got.Temperature != tt.want.Temperature || !got.Timestamp.Equal(tt.want.Timestamp) {
				t.Errorf("parseReading() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestRoomFromTopic(t *testing.T) {
	if got := roomFromTopic("sensors/+/+", "sensors/hall/temp"); got != "hall" {
		t.Errorf("roomFromTopic = %q; want hall", got)
	}
	if got := roomFromTopic("sensors/hall", "sensors/hall"); got != "" {
		t.Errorf("roomFromTopic without wildcard = %q; want empty", got)
	}
}

func TestHandleMessage_CallsHandler(t *testing.T) {
	s := NewSubscriber(config.Config{MQTTBroker: "localhost", MQTTPort: 1883, MQTTTopic: filter}, nil)

	var got []types.Reading
	s.SetMessageHandler(func(r types.Reading) error {
		got = append(got, r)
		return nil
	})

	s.handleMessage("templogger/kitchen/temperature", []byte("19.5"))
	s.handleMessage("templogger/kitchen/temperature", []byte("nope"))

	if len(got) != 1 || got[0].Room != "kitchen" || got[0].Temperature != 19.5 {
		t.Errorf("handler got %+v; want one kitchen reading", got)
	}

	s.SetMessageHandler(func(types.Reading) error { return errors.New("disk full") })
	s.handleMessage("templogger/kitchen/temperature", []byte("19.5"))
}

func TestSubscriber_StoppedConnectFails(t *testing.T) {
	s := NewSubscriber(config.Config{MQTTBroker: "localhost", MQTTPort: 1883, MQTTTopic: filter}, nil)
	s.Disconnect()
	s.Disconnect()
	if s.IsConnected() {
		t.Fatal("IsConnected() = true after Disconnect")
	}
	if err := s.Connect(t.Context()); err == nil {
		t.Fatal("Connect() after Disconnect = nil; want error")
	}
}
