package chain

import (
	"fcd/internal/chain/interfaces"
	"fcd/internal/models"
	"fcd/internal/providers"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

type FileManager struct {
	store      *models.ChainStore
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store *models.ChainStore, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	storage := f.store.GetData()

	jsonData, err := json.Marshal(storage)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var storage models.Storage
	if err := json.Unmarshal(decompressedData, &storage); err != nil {
		return fmt.Errorf("snapshot file %s is not readable: %w", fileName, err)
	}
	if storage.Chains == nil && storage.Settings == nil {
		f.logger.Warnf(providers.TypeApp, "Snapshot file %s holds no recognizable state, starting empty", fileName)
		return nil
	}

	f.store.PutData(&storage)
	f.logger.Infof(providers.TypeApp, "Restored %d chain record(s) from %s", len(storage.Chains), fileName)
	return nil
}
