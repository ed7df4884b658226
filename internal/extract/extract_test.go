package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackingNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "uk scheme with parcel no label",
			text: "PARCEL NO. JJD0002233573349014 is on its way",
			want: "JJD0002233573349014",
		},
		{
			name: "uk scheme with parcel number label",
			text: "Your parcel number: JD0002233573349014021",
			want: "JD0002233573349014021",
		},
		{
			name: "uk scheme with tracking number label lowercase",
			text: "tracking number jjd0002233573349014",
			want: "JJD0002233573349014",
		},
		{
			name: "uk scheme with internal whitespace",
			text: "Parcel no. JJD 000223357334901401",
			want: "JJD000223357334901401",
		},
		{
			name: "uk scheme in tracking url path",
			text: `Track it at https://tracking.inpost.co.uk/track/jjd0002233573349014 today`,
			want: "JJD0002233573349014",
		},
		{
			name: "uk scheme in url query parameter",
			text: `<a href="https://inpost.co.uk/tracking?number=JJD0002233573349014">track</a>`,
			want: "JJD0002233573349014",
		},
		{
			name: "eu scheme with label",
			text: "Parcel no. 622222104281400276108871 arrived",
			want: "622222104281400276108871",
		},
		{
			name: "eu scheme bare",
			text: "Przesylka 622222104281400276108871 czeka na odbior",
			want: "622222104281400276108871",
		},
		{
			name: "bare uk scheme without label",
			text: "We have an update about JJD0002233573349014 for you",
			want: "JJD0002233573349014",
		},
		{
			name: "label pattern wins over earlier bare candidate",
			text: "Ref 622222104281400276108871 but parcel no. JJD0002233573349014",
			want: "JJD0002233573349014",
		},
		{
			name: "too short digit run is rejected",
			text: "Parcel no. JJD12345 and order 12345678",
			want: "",
		},
		{
			name: "no tracking number at all",
			text: "Thanks for shopping with us!",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrackingNumber(tt.text))
		})
	}
}

func TestPickupCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "collection code label",
			text: "COLLECTION CODE 247089 expires soon",
			want: "247089",
		},
		{
			name: "pickup code label with colon",
			text: "Pick-up code: 123456",
			want: "123456",
		},
		{
			name: "your code label",
			text: "Your code 998877 is waiting",
			want: "998877",
		},
		{
			name: "label wins over earlier bare six digits",
			text: "Order 111111 confirmed, collection code 247089",
			want: "247089",
		},
		{
			// The bare fallback accepts any 6-digit run. That is a known
			// false-positive tradeoff, asserted here on purpose.
			name: "bare six digit fallback",
			text: "ready for pickup, see 555123 in the app",
			want: "555123",
		},
		{
			name: "five digits is not a code",
			text: "Use 12345 at the door",
			want: "",
		},
		{
			name: "nine digit send code is not a pickup code",
			text: "Enter this code instead344 924 512",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickupCode(tt.text))
		})
	}
}

func TestDropoffCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "label glued to code",
			text: "Enter this code instead344 924 512",
			want: "344924512",
		},
		{
			name: "send code label",
			text: "Send code: 111 222 333",
			want: "111222333",
		},
		{
			name: "drop-off code label",
			text: "Drop-off code 987 654 321 for your return",
			want: "987654321",
		},
		{
			name: "bare grouped digits fallback",
			text: "please use 344 924 512 at the machine",
			want: "344924512",
		},
		{
			name: "six digit pickup code is not a send code",
			text: "Collection code 247089",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DropoffCode(tt.text))
		})
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "shop description at end of text",
			text: "Collect from InPost shop - Co-operative NR13 5LP Norwich",
			want: "Co-operative NR13 5LP Norwich",
		},
		{
			name: "shop description stops at opening hours",
			text: "InPost shop - Co-operative NR13 5LP Norwich Opening hours: 7-22",
			want: "Co-operative NR13 5LP Norwich",
		},
		{
			name: "shop description stops at line break",
			text: "InPost shop - Tesco Express SW1A 1AA London\nRecipient: Jan Kowalski",
			want: "Tesco Express SW1A 1AA London",
		},
		{
			name: "locker label",
			text: "Paczkomat: KRA010 ul. Dluga 1",
			want: "KRA010",
		},
		{
			name: "bare locker code",
			text: "Waiting at WAW42A since yesterday",
			want: "WAW42A",
		},
		{
			name: "no location",
			text: "Your parcel is on the way",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Location(tt.text))
		})
	}
}

func TestRecipientName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "two capitalized words",
			text: "TO: Jan Kowalski\nparcel details below",
			want: "Jan Kowalski",
		},
		{
			name: "three capitalized words",
			text: "To: Anna Maria Nowak",
			want: "Anna Maria Nowak",
		},
		{
			name: "single word is too weak a signal",
			text: "TO: Warehouse",
			want: "",
		},
		{
			name: "no recipient line",
			text: "Collection code 247089",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecipientName(tt.text))
		})
	}
}

func TestExtractCombined(t *testing.T) {
	text := "PARCEL NO. JJD0002233573349014 is ready. COLLECTION CODE 247089. " +
		"Collect from InPost shop - Co-operative NR13 5LP Norwich"

	facts := Extract(text)

	assert.Equal(t, "JJD0002233573349014", facts.TrackingNumber)
	assert.Equal(t, "247089", facts.PickupCode)
	assert.Equal(t, "", facts.DropoffCode)
	assert.Equal(t, "Co-operative NR13 5LP Norwich", facts.Location)
	assert.True(t, facts.HasCode())
}

func TestExtractNeverPanicsOnGarbage(t *testing.T) {
	for _, text := range []string{"", "   ", "<<<>>>", "\x00\x01\x02", "1234567890"} {
		facts := Extract(text)
		assert.False(t, facts.HasCode())
	}
}
