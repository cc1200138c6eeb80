package library

//go:generate moq -out mocks/library.gen.go -pkg mocks . StorageService StorageTx SongStorage BlobStorage TagExtractor MetadataLookup FingerprintGenerator
