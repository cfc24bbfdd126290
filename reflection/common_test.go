package reflection_test

import "encoding/hex"

// fromHex returns the bytes represented by the hexadecimal string s.
// s may be prefixed with "0x".
func fromHex(s string) []byte {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

type slugDynStruct struct {
	F1 bool
	F2 []uint8
}

type slugStaticStruct struct {
	F1 bool
	F2 []uint8 `ssz-size:"3"`
}

// commonTestMatrix holds payload/wire/hash-tree-root triples shared across the
// marshal, unmarshal and size test suites.
var commonTestMatrix = []struct {
	name    string
	payload any
	ssz     []byte
	htr     []byte
}{
	{
		"bool_true",
		bool(true),
		fromHex("0x01"),
		fromHex("0x0100000000000000000000000000000000000000000000000000000000000000"),
	},
	{
		"uint32_val1",
		uint32(817482215),
		fromHex("0xe7c9b930"),
		fromHex("0xe7c9b93000000000000000000000000000000000000000000000000000000000"),
	},
	{
		"uint64_val1",
		uint64(848028848028),
		fromHex("0x9c4f7572c5000000"),
		fromHex("0x9c4f7572c5000000000000000000000000000000000000000000000000000000"),
	},
	{
		"array_val1",
		[]uint8{1, 2, 3, 4, 5},
		fromHex("0x0102030405"),
		fromHex("0x0102030405000000000000000000000000000000000000000000000000000000"),
	},
	{
		"complex_struct1",
		struct {
			F1 bool
			F2 uint8
			F3 uint16
			F4 uint32
			F5 uint64
		}{true, 1, 2, 3, 4},
		fromHex("0x01010200030000000400000000000000"),
		fromHex("0x03cf6524e0c5dee777f18d8a15b724aa70da9d9393e3a47434fe352eff0e7375"),
	},
	{
		"complex_struct2",
		struct {
			F1 bool
			F2 []uint8  `ssz-max:"10"`
			F3 []uint16 `ssz-size:"5"`
			F4 uint32
		}{true, []uint8{1, 1, 1, 1}, []uint16{2, 2, 2, 2}, 3},
		fromHex("0x0113000000020002000200020000000300000001010101"),
		fromHex("0xcb141fb9e033499344f568ea05a6a77ada886fc6e856ece01ae5a329e184fbd1"),
	},
	{
		"dynamic_struct_slice",
		struct {
			F1 uint8
			F2 []slugDynStruct `ssz-size:"3"`
			F3 uint8
		}{42, []slugDynStruct{{true, []uint8{4}}, {true, []uint8{4, 8, 4}}}, 43},
		fromHex("0x2a060000002b0c000000120000001a00000001050000000401050000000408040005000000"),
		fromHex("0x609aed07225400cb21de97260b267aab012358a235d1a1e9fc4df94859208c83"),
	},
	{
		"pointer_struct_slice",
		struct {
			F1 uint8
			F2 []*slugStaticStruct `ssz-size:"3"`
			F3 uint8
		}{42, []*slugStaticStruct{nil, {true, []uint8{4, 8, 4}}}, 43},
		fromHex("0x2a0000000001040804000000002b"),
		fromHex("0xcb36f82247d205d8fc9dc60d04a245fb588be35315b4c3406ed2b68f69de7eda"),
	},
	{
		"bitvector_sized",
		struct {
			Flags []uint8 `ssz-type:"bitvector" ssz-bitsize:"12"`
		}{[]uint8{0xff, 0x0f}},
		fromHex("0xff0f"),
		fromHex("0xff0f000000000000000000000000000000000000000000000000000000000000"),
	},
	{
		"bitlist_sized",
		struct {
			BitlistData []byte `ssz-type:"bitlist" ssz-max:"100"`
		}{[]byte{0x0f, 0x01}},
		fromHex("0x040000000f01"),
		fromHex("0xac0d43079c4f10cade6386f382829a4a00e4d9832cb66a068969c761bce57d96"),
	},
	{
		"string_dynamic",
		struct {
			Data string `ssz-max:"100"`
		}{"hello"},
		fromHex("0x0400000068656c6c6f"),
		fromHex("0x19da29a0796bb0ad502164fb6362e551756896856128aa64e415d5304a317b40"),
	},
	{
		"uint256_as_bytes",
		struct {
			Balance [32]byte `ssz-type:"uint256"`
		}{[32]byte{
			1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
			17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32,
		}},
		fromHex("0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"),
		fromHex("0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"),
	},
}
