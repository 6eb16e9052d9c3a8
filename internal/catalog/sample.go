package catalog

const sampleURI = "https://shdw-drive.genesysgo.net/HcnRQ2WJHfJzSgPrs4pPtEkiQjYTu1Bf6DmMns1yEWr8/1.json"

// Sample returns the two-entry demo catalog used when no catalog file is given.
func Sample() []NFTMetadata {
	return []NFTMetadata{
		sampleEntry("Compressed NFT 1"),
		sampleEntry("Compressed NFT 2"),
	}
}

func sampleEntry(name string) NFTMetadata {
	return NFTMetadata{
		Name:   name,
		Symbol: "Testy Test",
		Image:  sampleURI,
		Attributes: []Attribute{
			{TraitType: "Gender", Value: "Female"},
		},
	}
}
